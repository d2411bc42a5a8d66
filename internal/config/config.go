// Copyright 2026 The OPA Authors.  All rights reserved.
// Use of this source code is governed by an Apache2
// license that can be found in the LICENSE file.

// Package config resolves codec construction parameters — arena size,
// stack depth, output buffer size — from flags, environment variables, and
// an optional config file, using the teacher repo's configuration stack
// (github.com/spf13/viper backed by github.com/spf13/pflag) rather than
// hand-rolling flag parsing.
//
// This is squarely an ambient-stack concern per SPEC_FULL.md §3: spec.md's
// parser_create/writer_create take explicit integer arguments, and nothing
// here changes that contract — config.Load just gives cmd/jsoncat (and any
// other caller) a conventional way to produce those integers.
package config

import (
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Defaults mirror spec.md §6's construction floors.
const (
	DefaultParserMemBytes  = 16 * 1024
	DefaultStackDepth      = 16
	DefaultWriterBufBytes  = 16 * 1024
	DefaultWriterStackSize = 16
)

// Codec holds the resolved construction parameters for one Parser/Writer
// pair.
type Codec struct {
	ParserMemBytes  int `mapstructure:"parser_mem_bytes"`
	StackDepth      int `mapstructure:"stack_depth"`
	WriterBufBytes  int `mapstructure:"writer_buf_bytes"`
	WriterStackSize int `mapstructure:"writer_stack_size"`
}

// BindFlags registers the Codec's flags on fs, for cmd/jsoncat to attach to
// its root command before calling Load.
func BindFlags(fs *pflag.FlagSet) {
	fs.Int("parser-mem-bytes", DefaultParserMemBytes, "parser arena budget in bytes")
	fs.Int("stack-depth", DefaultStackDepth, "maximum nesting depth for both parser and writer")
	fs.Int("writer-buf-bytes", DefaultWriterBufBytes, "writer output buffer size in bytes")
}

// Load resolves a Codec from fs (already parsed), the ARENAJSON_*
// environment variables, and an optional config file named arenajson.yaml
// on the current path.
func Load(fs *pflag.FlagSet) (*Codec, error) {
	v := viper.New()
	v.SetEnvPrefix("arenajson")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetConfigName("arenajson")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	if fs != nil {
		// Flag names are hyphenated while config keys use underscores, so
		// each key is bound to its flag explicitly.
		for key, flag := range map[string]string{
			"parser_mem_bytes":  "parser-mem-bytes",
			"stack_depth":       "stack-depth",
			"writer_buf_bytes":  "writer-buf-bytes",
			"writer_stack_size": "stack-depth",
		} {
			if f := fs.Lookup(flag); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, err
				}
			}
		}
	}

	v.SetDefault("parser_mem_bytes", DefaultParserMemBytes)
	v.SetDefault("stack_depth", DefaultStackDepth)
	v.SetDefault("writer_buf_bytes", DefaultWriterBufBytes)
	v.SetDefault("writer_stack_size", DefaultStackDepth)

	c := &Codec{
		ParserMemBytes:  v.GetInt("parser_mem_bytes"),
		StackDepth:      v.GetInt("stack_depth"),
		WriterBufBytes:  v.GetInt("writer_buf_bytes"),
		WriterStackSize: v.GetInt("writer_stack_size"),
	}
	return applyFloors(c), nil
}

// applyFloors raises any value below spec.md §6's construction floors.
func applyFloors(c *Codec) *Codec {
	if c.ParserMemBytes < DefaultParserMemBytes {
		c.ParserMemBytes = DefaultParserMemBytes
	}
	if c.StackDepth < DefaultStackDepth {
		c.StackDepth = DefaultStackDepth
	}
	if c.WriterBufBytes < DefaultWriterBufBytes {
		c.WriterBufBytes = DefaultWriterBufBytes
	}
	if c.WriterStackSize < DefaultStackDepth {
		c.WriterStackSize = DefaultStackDepth
	}
	return c
}
