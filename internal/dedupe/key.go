// Package dedupe derives the stable identity strings that let the same
// real-world lead collapse across independent imports.
package dedupe

import (
	"errors"
	"hash/fnv"
	"strconv"
	"strings"

	"github.com/audreymhoughton/lead-lab/internal/domain"
)

// ErrInsufficientIdentity means a row has none of Website, Email or SourceURL
// after normalization, so no identity tier applies. Such rows cannot be
// deduped or upserted and must be surfaced to the operator.
var ErrInsufficientIdentity = errors.New("insufficient identity: need Website, Email or SourceURL")

const keyLen = 12

// Key derives the identity key for a lead from its durable fields. Tiers:
// Company+Website, else Company+Email, else Company+SourceURL. Mutable fields
// (Notes, WhyFit, DateAdded, Status, ...) never participate, so re-imports
// with edited free text land on the same key.
func Key(l domain.Lead) (string, error) {
	company := clean(l.Company)
	if company == "" {
		return "", ErrInsufficientIdentity
	}

	var second string
	switch {
	case clean(l.Website) != "":
		second = clean(l.Website)
	case clean(l.Email) != "":
		second = clean(l.Email)
	case clean(l.SourceURL) != "":
		second = clean(l.SourceURL)
	default:
		return "", ErrInsufficientIdentity
	}

	h := fnv.New64a()
	_, _ = h.Write([]byte(company + "|" + second))
	s := strconv.FormatUint(h.Sum64(), 36)
	if len(s) >= keyLen {
		return s[:keyLen], nil
	}
	return strings.Repeat("0", keyLen-len(s)) + s, nil
}

// clean lowercases and whitespace-collapses an identity field.
func clean(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}
