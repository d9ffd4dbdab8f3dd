package tape

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Options configures a tape's chunk geometry and checking behavior. The
// zero value is not usable; start from DefaultOptions.
type Options struct {
	// StatementChunkSize is the number of statements per chunk.
	StatementChunkSize int `yaml:"statement_chunk_size"`

	// JacobianChunkSize is the number of (identifier, partial) entries per
	// chunk. It bounds the number of active operands of one statement.
	JacobianChunkSize int `yaml:"jacobian_chunk_size"`

	// ConstantChunkSize is the number of passive operand values per chunk
	// on primal-value tapes.
	ConstantChunkSize int `yaml:"constant_chunk_size"`

	// ExternalChunkSize is the number of low-level function records per
	// chunk.
	ExternalChunkSize int `yaml:"external_chunk_size"`

	// ByteChunkSize is the capacity in bytes of one chunk of the low-level
	// function argument stream. It bounds one function's serialized size.
	ByteChunkSize int `yaml:"byte_chunk_size"`

	// TempBlockSize is the block size in elements of the scratch arena
	// handed to low-level function callbacks.
	TempBlockSize int `yaml:"temp_block_size"`

	// CheckArguments enables domain validation in elementary operations.
	// Disabled, domain violations silently produce NaN/Inf per IEEE 754.
	CheckArguments bool `yaml:"check_arguments"`
}

// DefaultOptions returns the default tape configuration.
func DefaultOptions() Options {
	return Options{
		StatementChunkSize: 2048,
		JacobianChunkSize:  4096,
		ConstantChunkSize:  4096,
		ExternalChunkSize:  64,
		ByteChunkSize:      4096,
		TempBlockSize:      4096,
	}
}

// Validate reports whether the options are usable.
func (o Options) Validate() error {
	if o.StatementChunkSize <= 0 || o.JacobianChunkSize <= 0 ||
		o.ConstantChunkSize <= 0 || o.ExternalChunkSize <= 0 ||
		o.ByteChunkSize <= 0 {
		return fmt.Errorf("tape: chunk sizes must be positive: %+v", o)
	}
	return nil
}

// YAML serializes the options.
func (o Options) YAML() ([]byte, error) {
	data, err := yaml.Marshal(o)
	if err != nil {
		return nil, fmt.Errorf("marshal options: %w", err)
	}
	return data, nil
}

// OptionsFromYAML parses options from YAML, starting from the defaults so a
// partial document only overrides the named fields.
func OptionsFromYAML(data []byte) (Options, error) {
	o := DefaultOptions()
	if err := yaml.Unmarshal(data, &o); err != nil {
		return Options{}, fmt.Errorf("parse options: %w", err)
	}
	if err := o.Validate(); err != nil {
		return Options{}, err
	}
	return o, nil
}

// LoadOptions reads options from a YAML file.
func LoadOptions(path string) (Options, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Options{}, fmt.Errorf("read options file: %w", err)
	}
	return OptionsFromYAML(data)
}
