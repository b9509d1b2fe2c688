// Package validate enforces the wire formats of user-supplied claim and
// creation parameters before anything reaches the chain. Validation
// failures never make it to simulation.
package validate

import (
	"fmt"
	"regexp"
)

var (
	addressRe = regexp.MustCompile(`^0x[a-fA-F0-9]{40}$`)
	bytes32Re = regexp.MustCompile(`^0x[a-fA-F0-9]{64}$`)
	// Groth16 seal: a, b, c, and delta concatenated.
	sealRe = regexp.MustCompile(`^0x[a-fA-F0-9]{512}$`)
	cidRe  = regexp.MustCompile(`^Qm[1-9A-HJ-NP-Za-km-z]{44}$`)
)

// MaxTitleLength is the creation-time policy on bounty titles.
const MaxTitleLength = 40

// Address checks a 20-byte hex address.
func Address(s string) error {
	if !addressRe.MatchString(s) {
		return fmt.Errorf("invalid address: %q", s)
	}
	return nil
}

// Bytes32 checks a 32-byte hex digest.
func Bytes32(s string) error {
	if !bytes32Re.MatchString(s) {
		return fmt.Errorf("invalid 32-byte hex value: %q", s)
	}
	return nil
}

// Seal checks a Groth16 proof seal (0x + 512 hex digits).
func Seal(s string) error {
	if !sealRe.MatchString(s) {
		return fmt.Errorf("invalid proof seal: want 0x followed by 512 hex digits, got %d characters", len(s))
	}
	return nil
}

// CID checks a base-58 IPFS content id of the Qm... form.
func CID(s string) error {
	if !cidRe.MatchString(s) {
		return fmt.Errorf("invalid IPFS CID: %q", s)
	}
	return nil
}

// Title checks the bounty title creation policy.
func Title(s string) error {
	if s == "" {
		return fmt.Errorf("title is required")
	}
	if len(s) > MaxTitleLength {
		return fmt.Errorf("title exceeds %d characters", MaxTitleLength)
	}
	return nil
}
