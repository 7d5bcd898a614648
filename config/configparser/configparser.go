/*
 * rv32ima - Configuration file parser
 *
 * Copyright 2024, Richard Cornwell
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in
 * all copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 */

// Package configparser reads the machine's configuration file: one
// `key = value` assignment per line, blank lines and `#` comments
// ignored. It covers everything command-line flags don't: RAM size and
// base, register/RAM initialization modes, and peripheral base
// addresses.
package configparser

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// SetupError reports a malformed configuration file or an invalid
// value within it; the caller reports this before execution begins.
type SetupError struct {
	File string
	Line int
	Detail string
}

func (e *SetupError) Error() string {
	return fmt.Sprintf("%s:%d: %s", e.File, e.Line, e.Detail)
}

// Config holds every setting the file format covers. Zero value is
// not a usable configuration; call Defaults to get one.
type Config struct {
	RAMBase uint32
	RAMSize uint32

	RegInitMode  string // "zero", "random", or "value"
	RegInitValue uint32

	RAMInitMode  string // "zero", "random", "addr", or "value"
	RAMInitValue byte

	UARTBase      uint32
	BlockDevBase  uint32
	MtimeBase     uint32
	MtimecmpBase  uint32

	RVCEnabled     bool
	TimerEnabled   bool
	InvariantCheck bool
	HostFS         bool
}

// Defaults returns the configuration the command line starts from
// before any file or flag is applied, matching the MMIO map and modes
// described in the external interface contract.
func Defaults() Config {
	return Config{
		RAMBase:      0,
		RAMSize:      16 * 1024 * 1024,
		RegInitMode:  "zero",
		RAMInitMode:  "zero",
		UARTBase:     0x1000_0000,
		BlockDevBase: 0x1001_0000,
		MtimecmpBase: 0x0200_4000,
		MtimeBase:    0x0200_BFF8,
		RVCEnabled:   true,
		TimerEnabled: true,
	}
}

var setters = map[string]func(*Config, string) error{
	"ram_base": func(c *Config, v string) error { return setHex32(&c.RAMBase, v) },
	"ram_size": func(c *Config, v string) error { return setHex32(&c.RAMSize, v) },
	"reg_init": func(c *Config, v string) error {
		return setInitMode([]string{"zero", "random"}, &c.RegInitMode, &c.RegInitValue, v)
	},
	"ram_init": func(c *Config, v string) error {
		var val uint32
		mode := c.RAMInitMode
		if err := setInitMode([]string{"zero", "random", "addr"}, &mode, &val, v); err != nil {
			return err
		}
		c.RAMInitMode = mode
		c.RAMInitValue = byte(val)
		return nil
	},
	"uart_base":      func(c *Config, v string) error { return setHex32(&c.UARTBase, v) },
	"blockdev_base":  func(c *Config, v string) error { return setHex32(&c.BlockDevBase, v) },
	"mtime_base":     func(c *Config, v string) error { return setHex32(&c.MtimeBase, v) },
	"mtimecmp_base":  func(c *Config, v string) error { return setHex32(&c.MtimecmpBase, v) },
	"rvc":            func(c *Config, v string) error { return setBool(&c.RVCEnabled, v) },
	"timer":          func(c *Config, v string) error { return setBool(&c.TimerEnabled, v) },
	"invariants":     func(c *Config, v string) error { return setBool(&c.InvariantCheck, v) },
	"hostfs":         func(c *Config, v string) error { return setBool(&c.HostFS, v) },
}

func setHex32(dst *uint32, v string) error {
	n, err := strconv.ParseUint(strings.TrimPrefix(strings.ToLower(v), "0x"), 16, 32)
	if err != nil {
		return err
	}
	*dst = uint32(n)
	return nil
}

func setBool(dst *bool, v string) error {
	b, err := strconv.ParseBool(v)
	if err != nil {
		return err
	}
	*dst = b
	return nil
}

// setInitMode parses one of the named modes or a literal numeric value
// into a mode name plus an accompanying value, the shared grammar
// behind both reg_init and ram_init (the "addr" named mode only
// applies to ram_init; the named set is supplied by the caller).
func setInitMode(named []string, mode *string, value *uint32, v string) error {
	lower := strings.ToLower(v)
	for _, n := range named {
		if lower == n {
			*mode = lower
			return nil
		}
	}
	n, err := strconv.ParseUint(strings.TrimPrefix(lower, "0x"), 16, 32)
	if err != nil {
		return fmt.Errorf("invalid init mode %q: %w", v, err)
	}
	*mode = "value"
	*value = uint32(n)
	return nil
}

// LoadFile applies every assignment in name to cfg, in order, so a
// later line overrides an earlier one.
func LoadFile(name string, cfg *Config) error {
	file, err := os.Open(name)
	if err != nil {
		return err
	}
	defer file.Close()

	reader := bufio.NewReader(file)
	lineNumber := 0
	for {
		line, err := reader.ReadString('\n')
		lineNumber++
		if len(line) == 0 && err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}
		if perr := applyLine(cfg, line); perr != nil {
			return &SetupError{File: name, Line: lineNumber, Detail: perr.Error()}
		}
		if errors.Is(err, io.EOF) {
			return nil
		}
	}
}

func applyLine(cfg *Config, line string) error {
	if idx := strings.IndexByte(line, '#'); idx >= 0 {
		line = line[:idx]
	}
	line = strings.TrimSpace(line)
	if line == "" {
		return nil
	}

	key, value, ok := strings.Cut(line, "=")
	if !ok {
		return fmt.Errorf("expected key = value, got %q", line)
	}
	key = strings.ToLower(strings.TrimSpace(key))
	value = strings.TrimSpace(value)

	set, ok := setters[key]
	if !ok {
		return fmt.Errorf("unknown option %q", key)
	}
	return set(cfg, value)
}
