// internal/upload/accumulator.go
package upload

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"

	"waste-docket-api-server/internal/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	ErrEmptyChunk   = errors.New("chunk is empty")
	ErrUnknownChunk = errors.New("chunked upload not found")
	ErrNotFound     = errors.New("not found")
)

// Store persists partial uploads of a single kind. A missing document is
// reported through an error recognised by the isNotFound func given to
// NewAccumulator.
type Store interface {
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.ChunkedUpload, error)
	Create(ctx context.Context, c *models.ChunkedUpload) error
	SetPayload(ctx context.Context, id primitive.ObjectID, payload string) error
	Delete(ctx context.Context, id primitive.ObjectID) error
}

// Accumulator assembles a payload from chunks sent in order. There is no
// sequence number; callers must send chunks one after the other.
type Accumulator struct {
	store      Store
	ttl        time.Duration
	isNotFound func(error) bool
	now        func() time.Time
}

func NewAccumulator(store Store, ttl time.Duration, isNotFound func(error) bool) *Accumulator {
	if isNotFound == nil {
		isNotFound = func(err error) bool { return errors.Is(err, ErrNotFound) }
	}
	return &Accumulator{store: store, ttl: ttl, isNotFound: isNotFound, now: time.Now}
}

// Append concatenates chunk onto the upload named by existingID. When
// existingID is empty, malformed, no longer stored or owned by another
// fleet or user, a new upload whose payload is exactly chunk is created
// instead.
func (a *Accumulator) Append(ctx context.Context, existingID, chunk string, fleetID, userID primitive.ObjectID) (primitive.ObjectID, error) {
	if chunk == "" {
		return primitive.NilObjectID, ErrEmptyChunk
	}

	if id, err := primitive.ObjectIDFromHex(existingID); err == nil {
		current, err := a.store.FindByID(ctx, id)
		switch {
		case err == nil && current.FleetID == fleetID && current.UserID == userID:
			if err := a.store.SetPayload(ctx, id, current.Payload+chunk); err != nil {
				return primitive.NilObjectID, fmt.Errorf("append chunk: %w", err)
			}
			return id, nil
		case err != nil && !a.isNotFound(err):
			return primitive.NilObjectID, fmt.Errorf("load upload: %w", err)
		}
	}

	now := a.now()
	doc := &models.ChunkedUpload{
		Payload:   chunk,
		FleetID:   fleetID,
		UserID:    userID,
		CreatedAt: now,
		ExpireAt:  now.Add(a.ttl),
	}
	if err := a.store.Create(ctx, doc); err != nil {
		return primitive.NilObjectID, fmt.Errorf("create upload: %w", err)
	}
	return doc.ID, nil
}

// Consume hands the assembled payload to use and deletes the upload once
// use succeeds. Reading, using and deleting are separate steps, so a crash
// in between leaves the upload for the TTL index to purge. An upload stored
// for another fleet is reported as unknown.
func (a *Accumulator) Consume(ctx context.Context, id string, fleetID primitive.ObjectID, use func(payload string) error) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrUnknownChunk
	}
	doc, err := a.store.FindByID(ctx, oid)
	if err != nil {
		if a.isNotFound(err) {
			return ErrUnknownChunk
		}
		return fmt.Errorf("load upload: %w", err)
	}
	if doc.FleetID != fleetID {
		return ErrUnknownChunk
	}
	if err := use(doc.Payload); err != nil {
		return err
	}
	if err := a.store.Delete(ctx, oid); err != nil && !a.isNotFound(err) {
		return fmt.Errorf("delete consumed upload: %w", err)
	}
	return nil
}

// DecodeBase64 strips an optional data URL prefix and decodes the rest.
// It returns the content type named by the prefix, or fallback.
func DecodeBase64(payload, fallback string) ([]byte, string, error) {
	contentType := fallback
	if strings.HasPrefix(payload, "data:") {
		comma := strings.IndexByte(payload, ',')
		if comma < 0 {
			return nil, "", errors.New("malformed data URL")
		}
		meta := payload[len("data:"):comma]
		if mt, _, ok := strings.Cut(meta, ";"); ok && mt != "" {
			contentType = mt
		}
		payload = payload[comma+1:]
	}
	data, err := base64.StdEncoding.DecodeString(strings.TrimSpace(payload))
	if err != nil {
		return nil, "", fmt.Errorf("decode base64: %w", err)
	}
	return data, contentType, nil
}
