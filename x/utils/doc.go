// Package utils contains the decorators shared by every transaction
// pipeline: savepoints, panic recovery, logging and action tagging.
package utils
