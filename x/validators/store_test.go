package validators

import (
	"testing"

	"github.com/iov-one/poa"
	"github.com/iov-one/poa/weavetest/assert"
)

func TestGovernanceQueries(t *testing.T) {
	f := newFixture(t, DefaultConfiguration(), 3)
	cand := f.newAccount()
	_, err := f.ctrl.ProposeAdd(atHeight(2), f.db, f.members[0], Candidate{Address: cand})
	assert.Nil(t, err)

	qr := poa.NewQueryRouter()
	RegisterQuery(qr)

	vals, err := qr.Handler("/poa/validators").Query(f.db, poa.PrefixQueryMod, nil)
	assert.Nil(t, err)
	assert.Equal(t, 3, len(vals))

	votes, err := qr.Handler("/poa/addvotes").Query(f.db, poa.KeyQueryMod, cand)
	assert.Nil(t, err)
	assert.Equal(t, 1, len(votes))
	var rec VoteRecord
	assert.Nil(t, rec.Unmarshal(votes[0].Value))
	assert.Equal(t, []poa.Address{f.members[0]}, rec.Voters)

	props, err := qr.Handler("/poa/rmprops").Query(f.db, poa.PrefixQueryMod, nil)
	assert.Nil(t, err)
	assert.Equal(t, 0, len(props))
}

func TestValidatorsOrdered(t *testing.T) {
	f := newFixture(t, DefaultConfiguration(), 5)
	addrs, err := f.ctrl.store.Addresses(f.db)
	assert.Nil(t, err)
	assert.Equal(t, 5, len(addrs))
	for i := 1; i < len(addrs); i++ {
		if addrs[i-1].String() >= addrs[i].String() {
			t.Fatalf("addresses not ordered: %s >= %s", addrs[i-1], addrs[i])
		}
	}
}
