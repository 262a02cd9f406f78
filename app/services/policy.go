package services

import (
	"strings"

	"github.com/shashiranjanraj/storefront/pkg/record"
)

// WritePolicy decides how service writes treat concurrency tokens. The zero
// value is if-match.
type WritePolicy struct {
	Unconditional bool
}

// ParseWritePolicy accepts "if-match" (default) or "unconditional".
func ParseWritePolicy(s string) WritePolicy {
	return WritePolicy{Unconditional: strings.EqualFold(s, "unconditional")}
}

// Mode returns the record write mode for an entity read with token.
func (p WritePolicy) Mode(token string) record.WriteMode {
	if p.Unconditional {
		return record.Unconditional()
	}
	return record.IfMatch(token)
}

func (p WritePolicy) String() string {
	if p.Unconditional {
		return "unconditional"
	}
	return "if-match"
}
