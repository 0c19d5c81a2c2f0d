package sessionvalkey

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/valkey-io/valkey-go"

	"github.com/openkcm/blog-client/internal/session"
)

const objectTypeSlot = "slot"

var (
	ErrGetSlot    = errors.New("getting slot value from store")
	ErrSetSlot    = errors.New("setting slot value into store")
	ErrDeleteSlot = errors.New("deleting slot value from store")
)

type record struct {
	Value     string    `json:"value"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Slot keeps durable slot values in ValKey under "<prefix>:slot:<key>".
type Slot struct {
	valkey valkey.Client
	prefix string
}

var _ = session.Slot(&Slot{})

func NewSlot(valkeyClient valkey.Client, prefix string) *Slot {
	return &Slot{
		valkey: valkeyClient,
		prefix: strings.TrimSuffix(prefix, ":"),
	}
}

func (s *Slot) Get(ctx context.Context, key string) (string, error) {
	bytes, err := s.valkey.Do(ctx, s.valkey.B().Get().Key(s.key(key)).Build()).AsBytes()
	if err != nil {
		if valkey.IsValkeyNil(err) {
			return "", session.ErrSlotEmpty
		}

		return "", errors.Join(ErrGetSlot, fmt.Errorf("executing get command: %w", err))
	}

	var rec record
	if err := s.decode(bytes, &rec); err != nil {
		return "", errors.Join(ErrGetSlot, err)
	}

	return rec.Value, nil
}

func (s *Slot) Set(ctx context.Context, key, value string) error {
	bytes, err := s.encode(record{Value: value, UpdatedAt: time.Now().UTC()})
	if err != nil {
		return errors.Join(ErrSetSlot, err)
	}

	if err := s.valkey.Do(ctx, s.valkey.B().Set().Key(s.key(key)).Value(valkey.BinaryString(bytes)).Build()).Error(); err != nil {
		return errors.Join(ErrSetSlot, fmt.Errorf("executing set command: %w", err))
	}

	return nil
}

func (s *Slot) Delete(ctx context.Context, key string) error {
	if err := s.valkey.Do(ctx, s.valkey.B().Del().Key(s.key(key)).Build()).Error(); err != nil {
		return errors.Join(ErrDeleteSlot, fmt.Errorf("executing del command: %w", err))
	}

	return nil
}

func (s *Slot) key(key string) string {
	if s.prefix == "" {
		return objectTypeSlot + ":" + key
	}

	return fmt.Sprintf("%s:%s:%s", s.prefix, objectTypeSlot, key)
}

func (s *Slot) encode(v any) ([]byte, error) {
	bytes, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("marshaling json: %w", err)
	}

	return bytes, nil
}

func (s *Slot) decode(data []byte, into any) error {
	if err := json.Unmarshal(data, into); err != nil {
		return fmt.Errorf("unmarshaling json: %w", err)
	}

	return nil
}
