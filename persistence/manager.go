package persistence

import (
	"context"
	"fmt"

	geoshard "github.com/srleyva/LocationBasedSharding"
	"github.com/srleyva/LocationBasedSharding/blobstore"
	"github.com/srleyva/LocationBasedSharding/codec"
)

// Options configures a Manager.
type Options struct {
	// Codec encodes the shard collection payload. Default: codec.Default.
	Codec codec.Codec
	// Compression applied to the encoded payload. Default: zstd.
	Compression Compression
	// Logger for snapshot tracing. Default: no logging.
	Logger *geoshard.Logger
}

// Manager saves and loads shard-table snapshots in a blob store.
// Safe for concurrent use.
type Manager struct {
	store       blobstore.BlobStore
	codec       codec.Codec
	compression Compression
	logger      *geoshard.Logger
}

// NewManager creates a Manager writing to the given store.
func NewManager(store blobstore.BlobStore, optFns ...func(*Options)) *Manager {
	opts := Options{
		Codec:       codec.Default,
		Compression: CompressionZstd,
		Logger:      geoshard.NoopLogger(),
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Manager{
		store:       store,
		codec:       opts.Codec,
		compression: opts.Compression,
		logger:      opts.Logger,
	}
}

// Save writes the collection as a self-describing snapshot blob.
func (m *Manager) Save(ctx context.Context, name string, collection *geoshard.ShardCollection) error {
	err := m.save(ctx, name, collection)
	m.logger.LogSnapshot(ctx, name, err)
	return err
}

func (m *Manager) save(ctx context.Context, name string, collection *geoshard.ShardCollection) error {
	if err := collection.Validate(); err != nil {
		return fmt.Errorf("refusing to snapshot invalid collection: %w", err)
	}

	encoded, err := m.codec.Marshal(collection)
	if err != nil {
		return fmt.Errorf("encode shard collection: %w", err)
	}
	payload, err := compress(encoded, m.compression)
	if err != nil {
		return fmt.Errorf("compress snapshot: %w", err)
	}

	blob := encodeSnapshot(snapshotHeader{
		compression: m.compression,
		codecName:   m.codec.Name(),
	}, payload)

	return m.store.Put(ctx, name, blob)
}

// Load reads a snapshot and reconstructs the collection. The snapshot's own
// header selects the codec and compression; the Manager's configured
// defaults only affect Save.
func (m *Manager) Load(ctx context.Context, name string) (*geoshard.ShardCollection, error) {
	blob, err := m.store.Get(ctx, name)
	if err != nil {
		return nil, err
	}

	header, payload, err := decodeSnapshot(blob)
	if err != nil {
		return nil, fmt.Errorf("snapshot %s: %w", name, err)
	}

	c, ok := codec.ByName(header.codecName)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownCodec, header.codecName)
	}

	encoded, err := decompress(payload, header.compression)
	if err != nil {
		return nil, fmt.Errorf("decompress snapshot %s: %w", name, err)
	}

	var collection geoshard.ShardCollection
	if err := c.Unmarshal(encoded, &collection); err != nil {
		return nil, fmt.Errorf("decode snapshot %s: %w", name, err)
	}
	return &collection, nil
}

// List returns the snapshot names under the given prefix.
func (m *Manager) List(ctx context.Context, prefix string) ([]string, error) {
	return m.store.List(ctx, prefix)
}

// Delete removes a snapshot.
func (m *Manager) Delete(ctx context.Context, name string) error {
	return m.store.Delete(ctx, name)
}
