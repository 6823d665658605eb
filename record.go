// Copyright (c) 2025-2026 complex (complex@ft.hn)
// See LICENSE for licensing information

package adawallet

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/complex-gh/adawallet/address"
	"github.com/complex-gh/adawallet/secret"
)

// Record field names.
const (
	FieldMnemonic            = "mnemonic"
	FieldDerivationPath      = "derivation_path"
	FieldStakeDerivationPath = "stake_derivation_path"
	FieldRootKey             = "root_xsk"
	FieldSigningKey          = "skey"
	FieldSigningKeyHex       = "skey_hex"
	FieldVerificationKey     = "pkey"
	FieldVerificationKeyHex  = "pkey_hex"
	FieldKeyHash             = "key_hash"
	FieldKeyHashBech32       = "key_hash_bech32"
	FieldStakeSigningKey     = "stake_skey"
	FieldStakeSigningKeyHex  = "stake_skey_hex"
	FieldStakeVerifyKey      = "stake_pkey"
	FieldStakeVerifyKeyHex   = "stake_pkey_hex"
	FieldStakeKeyHash        = "stake_key_hash"
	FieldStakeKeyHashBech32  = "stake_key_hash_bech32"
)

// secretFields are redacted by Record.String.
var secretFields = map[string]bool{
	FieldMnemonic:           true,
	FieldRootKey:            true,
	FieldSigningKey:         true,
	FieldSigningKeyHex:      true,
	FieldStakeSigningKey:    true,
	FieldStakeSigningKeyHex: true,
}

// AddressField returns the record field name for an address of kind on
// net, for example "base_address_preprod".
func AddressField(kind address.Kind, net address.Network) string {
	return kind.String() + "_address_" + net.String()
}

// Field is one entry of a Record.
type Field struct {
	Key   string
	Value string
}

// Secret reports whether the field holds secret material.
func (f Field) Secret() bool {
	return secretFields[f.Key]
}

// Record is the flat, ordered result of assembling a wallet. It is built
// once and never modified.
type Record struct {
	mode   string
	fields []Field
}

// recordBuilder collects fields in order, skipping empty values.
type recordBuilder struct {
	rec *Record
}

func newRecordBuilder(mode string) *recordBuilder {
	return &recordBuilder{rec: &Record{mode: mode}}
}

func (b *recordBuilder) set(key, value string) {
	if value == "" {
		return
	}
	b.rec.fields = append(b.rec.fields, Field{Key: key, Value: value})
}

func (b *recordBuilder) build() *Record {
	return b.rec
}

// Mode returns the name of the mode that produced the record.
func (r *Record) Mode() string {
	return r.mode
}

// Fields returns a copy of the fields in output order.
func (r *Record) Fields() []Field {
	out := make([]Field, len(r.fields))
	copy(out, r.fields)
	return out
}

// Get returns the value of a field.
func (r *Record) Get(key string) (string, bool) {
	for _, f := range r.fields {
		if f.Key == key {
			return f.Value, true
		}
	}
	return "", false
}

// Address returns the bech32 address of kind on net, if the record has one.
func (r *Record) Address(kind address.Kind, net address.Network) (string, bool) {
	return r.Get(AddressField(kind, net))
}

// Map returns the fields as a plain map. Field order is lost.
func (r *Record) Map() map[string]string {
	m := make(map[string]string, len(r.fields))
	for _, f := range r.fields {
		m[f.Key] = f.Value
	}
	return m
}

// MarshalJSON encodes the record as a single JSON object with keys in
// field order. Secret fields are included: this is the persisted form.
func (r *Record) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, f := range r.fields {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(f.Key)
		if err != nil {
			return nil, fmt.Errorf("could not encode field name %q: %w", f.Key, err)
		}
		v, err := json.Marshal(f.Value)
		if err != nil {
			return nil, fmt.Errorf("could not encode field %q: %w", f.Key, err)
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes a flat object of string values, keeping the key
// order of the input.
func (r *Record) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))

	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return errors.New("wallet record must be a JSON object")
	}

	var fields []Field
	seen := make(map[string]bool)
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := tok.(string)
		if !ok {
			return fmt.Errorf("unexpected token %v", tok)
		}
		var value string
		if err := dec.Decode(&value); err != nil {
			return fmt.Errorf("field %q: %w", key, err)
		}
		if seen[key] {
			return fmt.Errorf("duplicate field %q", key)
		}
		seen[key] = true
		fields = append(fields, Field{Key: key, Value: value})
	}
	if _, err := dec.Token(); err != nil {
		return err
	}

	r.fields = fields
	if _, ok := r.Get(FieldMnemonic); ok {
		r.mode = RestoreFromMnemonic{}.modeName()
	} else {
		r.mode = GenerateSingleKey{}.modeName()
	}
	return nil
}

// String renders one "key: value" line per field with secret values
// redacted.
func (r *Record) String() string {
	var b strings.Builder
	for _, f := range r.fields {
		v := f.Value
		if f.Secret() {
			v = secret.Redacted
		}
		fmt.Fprintf(&b, "%s: %s\n", f.Key, v)
	}
	return b.String()
}
