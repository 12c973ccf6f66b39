// Package persist saves and loads clustering artifacts - models and point
// datasets - through a blobstore.ObjectStore.
//
// Artifacts are self-describing: an envelope records the codec the payload
// was written with, so files written with one codec load fine in a process
// configured with another.
package persist

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/hupe1980/flowgo/blobstore"
	"github.com/hupe1980/flowgo/codec"
	"github.com/hupe1980/flowgo/kmeans"
	"github.com/hupe1980/flowgo/point"
)

// ErrUnknownCodec is returned when an artifact was written with a codec
// this build does not know.
var ErrUnknownCodec = errors.New("persist: unknown codec")

// The envelope is always encoded with the standard library so it can be
// decoded before the payload codec is known.
type envelope struct {
	Codec   string `json:"codec"`
	Payload []byte `json:"payload"`
}

type modelSnapshot struct {
	Dimensions  int           `json:"dimensions"`
	NumClusters int           `json:"num_clusters"`
	Iterations  int           `json:"iterations"`
	Centroids   []point.Point `json:"centroids"`
}

func seal(v any, c codec.Codec) ([]byte, error) {
	if c == nil {
		c = codec.Default
	}
	payload, err := c.Marshal(v)
	if err != nil {
		return nil, err
	}
	return json.Marshal(envelope{Codec: c.Name(), Payload: payload})
}

func unseal(data []byte, v any) error {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return err
	}
	c, ok := codec.ByName(env.Codec)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownCodec, env.Codec)
	}
	return c.Unmarshal(env.Payload, v)
}

// SaveModel stores the model under name. A nil codec means codec.Default.
func SaveModel(ctx context.Context, store blobstore.ObjectStore, name string, m *kmeans.Model, c codec.Codec) error {
	data, err := seal(modelSnapshot{
		Dimensions:  m.Dimensions(),
		NumClusters: m.NumClusters(),
		Iterations:  m.Iterations(),
		Centroids:   m.Centroids(),
	}, c)
	if err != nil {
		return err
	}
	return store.Put(ctx, name, data)
}

// LoadModel reads a model stored under name.
func LoadModel(ctx context.Context, store blobstore.ObjectStore, name string) (*kmeans.Model, error) {
	data, err := store.Get(ctx, name)
	if err != nil {
		return nil, err
	}
	var snap modelSnapshot
	if err := unseal(data, &snap); err != nil {
		return nil, err
	}
	return kmeans.NewModel(snap.Dimensions, snap.NumClusters, snap.Iterations, snap.Centroids), nil
}

// SavePoints stores a point dataset under name. A nil codec means
// codec.Default.
func SavePoints(ctx context.Context, store blobstore.ObjectStore, name string, pts []point.Point, c codec.Codec) error {
	data, err := seal(pts, c)
	if err != nil {
		return err
	}
	return store.Put(ctx, name, data)
}

// LoadPoints reads a point dataset stored under name.
func LoadPoints(ctx context.Context, store blobstore.ObjectStore, name string) ([]point.Point, error) {
	data, err := store.Get(ctx, name)
	if err != nil {
		return nil, err
	}
	var pts []point.Point
	if err := unseal(data, &pts); err != nil {
		return nil, err
	}
	return pts, nil
}
