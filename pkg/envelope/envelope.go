// Package envelope pairs an ordered metadata tree with a byte payload.
//
// Envelopes are built through Build, which guarantees that the metadata is
// complete before any payload byte is produced and that no partially built
// envelope is ever returned. The framed stream form (Write/Read) carries an
// envelope over an io.Writer/io.Reader, optionally compressing the payload.
package envelope

import (
	"bytes"
	"context"
	"io"

	"github.com/ajitpratap0/tables/pkg/errors"
	"github.com/ajitpratap0/tables/pkg/meta"
	"github.com/ajitpratap0/tables/pkg/pool"
)

// Envelope is a typed, identified {metadata, payload} pair
type Envelope struct {
	Type   string
	DataID string
	Meta   *meta.Meta
	Data   []byte
}

// Builder assembles one envelope. It is only valid inside the Build callback.
type Builder struct {
	typ    string
	dataID string
	meta   *meta.Meta
	data   *bytes.Buffer
	sealed bool
	done   bool
}

// Build runs fn against a fresh builder and returns the finished envelope.
// Nothing is returned if fn fails or ctx is canceled.
func Build(ctx context.Context, fn func(*Builder) error) (*Envelope, error) {
	b := &Builder{meta: meta.New()}
	defer func() {
		b.done = true
		if b.data != nil {
			pool.PutBuffer(b.data)
			b.data = nil
		}
	}()

	if err := ctx.Err(); err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeCanceled, "envelope build canceled")
	}
	if err := fn(b); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeCanceled, "envelope build canceled")
	}

	env := &Envelope{
		Type:   b.typ,
		DataID: b.dataID,
		Meta:   b.meta,
	}
	if b.data != nil {
		env.Data = append([]byte(nil), b.data.Bytes()...)
	}
	return env, nil
}

// Meta returns the metadata under construction. Edits after WriteData are
// rejected by SetMeta; direct edits through the returned tree are the
// caller's responsibility.
func (b *Builder) Meta() *meta.Meta {
	return b.meta
}

// SetMeta stores a leaf in the metadata
func (b *Builder) SetMeta(path, value string) error {
	if err := b.checkOpen(); err != nil {
		return err
	}
	b.meta.Set(path, value)
	return nil
}

// SetMetaTree stores a nested tree in the metadata
func (b *Builder) SetMetaTree(path string, m *meta.Meta) error {
	if err := b.checkOpen(); err != nil {
		return err
	}
	b.meta.SetMeta(path, m)
	return nil
}

// SetType sets the content type tag
func (b *Builder) SetType(typ string) error {
	if err := b.checkOpen(); err != nil {
		return err
	}
	b.typ = typ
	return nil
}

// SetDataID sets the content identifier
func (b *Builder) SetDataID(id string) error {
	if err := b.checkOpen(); err != nil {
		return err
	}
	b.dataID = id
	return nil
}

func (b *Builder) checkOpen() error {
	if b.done {
		return errors.New(errors.ErrorTypeValidation, "envelope builder used after Build returned")
	}
	if b.sealed {
		return errors.New(errors.ErrorTypeValidation, "envelope metadata is sealed once data is written")
	}
	return nil
}

// WriteData seals the metadata and runs write against the payload buffer.
// It may be called more than once; payload bytes accumulate.
func (b *Builder) WriteData(ctx context.Context, write func(w io.Writer) error) error {
	if b.done {
		return errors.New(errors.ErrorTypeValidation, "envelope builder used after Build returned")
	}
	if err := ctx.Err(); err != nil {
		return errors.Wrap(err, errors.ErrorTypeCanceled, "envelope data write canceled")
	}
	b.sealed = true
	if b.data == nil {
		b.data = pool.GetBuffer()
	}
	return write(b.data)
}

// Sealed reports whether payload writing has started
func (b *Builder) Sealed() bool {
	return b.sealed
}
