package server

import (
	"context"
	"fmt"
	"io/ioutil"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	abci "github.com/tendermint/tendermint/abci/types"
	"github.com/tendermint/tendermint/libs/log"
	"go.uber.org/goleak"
)

func baseApp(string, log.Logger, bool) (abci.Application, error) {
	return abci.NewBaseApplication(), nil
}

func freeAddr(t *testing.T) string {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer l.Close()
	return l.Addr().String()
}

func TestStartServesUntilCancelled(t *testing.T) {
	defer goleak.VerifyNone(t)

	opts := StartOptions{
		Bind:        "tcp://" + freeAddr(t),
		MetricsAddr: freeAddr(t),
	}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- StartCmd(ctx, baseApp, log.NewNopLogger(), "", opts)
	}()

	var body []byte
	require.Eventually(t, func() bool {
		resp, err := http.Get(fmt.Sprintf("http://%s/metrics", opts.MetricsAddr))
		if err != nil {
			return false
		}
		defer resp.Body.Close()
		body, err = ioutil.ReadAll(resp.Body)
		return err == nil && resp.StatusCode == http.StatusOK
	}, 3*time.Second, 50*time.Millisecond)
	assert.Contains(t, string(body), "go_goroutines")

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(3 * time.Second):
		t.Fatal("server did not stop")
	}
	http.DefaultClient.CloseIdleConnections()
}

func TestStartRejectsBadAddress(t *testing.T) {
	defer goleak.VerifyNone(t)

	err := StartCmd(context.Background(), baseApp, log.NewNopLogger(), "", StartOptions{Bind: "nowhere"})
	assert.Error(t, err)
}
