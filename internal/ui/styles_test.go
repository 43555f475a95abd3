package ui

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSuccessContainsPrefixAndMessage(t *testing.T) {
	result := Success("stored")
	assert.Contains(t, result, "✓")
	assert.Contains(t, result, "stored")
}

func TestWarnContainsPrefixAndMessage(t *testing.T) {
	result := Warn("careful")
	assert.Contains(t, result, "⚠")
	assert.Contains(t, result, "careful")
}

func TestErrContainsPrefixAndMessage(t *testing.T) {
	result := Err("failed")
	assert.Contains(t, result, "✗")
	assert.Contains(t, result, "failed")
}

func TestInfoContainsPrefixAndMessage(t *testing.T) {
	result := Info("nothing pending")
	assert.Contains(t, result, "ℹ")
	assert.Contains(t, result, "nothing pending")
}

func TestHintContainsPrefixAndMessage(t *testing.T) {
	result := Hint("run actl submit")
	assert.Contains(t, result, "💡")
	assert.Contains(t, result, "run actl submit")
}

func TestAddrContainsAddress(t *testing.T) {
	result := Addr("0xABCDEF")
	assert.Contains(t, result, "0xABCDEF")
}

func TestProjectContainsName(t *testing.T) {
	result := Project("vault")
	assert.Contains(t, result, "vault")
}

func TestTruncateHashShort(t *testing.T) {
	assert.Equal(t, "0x1234", TruncateHash("0x1234"))
}

func TestTruncateHashExactBoundary(t *testing.T) {
	assert.Equal(t, "0x12345678", TruncateHash("0x12345678"))
}

func TestTruncateHashLong(t *testing.T) {
	h := "0x1234567890abcdef1234567890abcdef1234567890abcdef1234567890abcdef"
	result := TruncateHash(h)
	assert.Equal(t, "0x1234…cdef", result)
}
