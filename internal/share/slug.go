// Package share allocates the public slugs that grant read-only access to a story.
package share

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// ErrSlugTaken is returned by a Store when a slug write loses a uniqueness
// race at the store level. The allocator treats it as an ordinary retry.
var ErrSlugTaken = errors.New("share: slug already taken")

// Store is the subset of the record store the allocator needs. AssignSlug
// must be backed by a uniqueness constraint so a collision that slips past
// SlugExists surfaces as ErrSlugTaken instead of silently succeeding.
type Store interface {
	SlugExists(ctx context.Context, slug string) (bool, error)
	AssignSlug(ctx context.Context, ownerID uuid.UUID, slug string) error
}

const (
	slugAlphabet = "abcdefghijkmnopqrstuvwxyzABCDEFGHJKLMNPQRSTUVWXYZ23456789"
	slugLength   = 10

	// maxAttempts bounds the retry loop. With ~58 bits of entropy per
	// candidate, exhausting it means the store is misbehaving, so the
	// allocator fails loudly rather than looping forever.
	maxAttempts = 8
)

// Allocator hands out collision-free public slugs. Call Allocate only for a
// record that has no slug yet; a slug, once assigned, is never reassigned.
type Allocator struct {
	store Store
}

// NewAllocator creates an Allocator over the given store.
func NewAllocator(store Store) *Allocator {
	return &Allocator{store: store}
}

// Allocate generates a random slug, checks it against the store, and assigns
// it to the owner. Collisions detected before the write (SlugExists) and
// after it (ErrSlugTaken from AssignSlug) both trigger regeneration. The
// existence check only narrows the race window between concurrent allocators;
// the store's uniqueness constraint is the actual correctness backstop.
func (a *Allocator) Allocate(ctx context.Context, ownerID uuid.UUID) (string, error) {
	for attempt := 0; attempt < maxAttempts; attempt++ {
		slug, err := NewSlug()
		if err != nil {
			return "", err
		}

		exists, err := a.store.SlugExists(ctx, slug)
		if err != nil {
			return "", fmt.Errorf("failed to check slug existence: %w", err)
		}
		if exists {
			continue
		}

		err = a.store.AssignSlug(ctx, ownerID, slug)
		if errors.Is(err, ErrSlugTaken) {
			continue
		}
		if err != nil {
			return "", fmt.Errorf("failed to assign slug: %w", err)
		}
		return slug, nil
	}
	return "", fmt.Errorf("failed to allocate a unique slug after %d attempts", maxAttempts)
}

// NewSlug returns a random slug candidate. The alphabet omits the easily
// confused characters l, I, O, 0 and 1; ten characters carry ~58 bits of
// entropy, enough for the retry loop to terminate in O(1) expected
// iterations at any realistic population size.
func NewSlug() (string, error) {
	// Bytes at or above this threshold are rejected so every alphabet
	// character is drawn with equal probability.
	const unbiasedLimit = 256 - 256%len(slugAlphabet)

	out := make([]byte, 0, slugLength)
	buf := make([]byte, slugLength)
	for len(out) < slugLength {
		if _, err := rand.Read(buf); err != nil {
			return "", fmt.Errorf("failed to read random bytes: %w", err)
		}
		for _, b := range buf {
			if int(b) >= unbiasedLimit {
				continue
			}
			out = append(out, slugAlphabet[int(b)%len(slugAlphabet)])
			if len(out) == slugLength {
				break
			}
		}
	}
	return string(out), nil
}
