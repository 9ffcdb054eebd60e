// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package runner

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/telekom/netping/pkg/config"
	"github.com/telekom/netping/pkg/ping"
	"gopkg.in/yaml.v3"
)

// Kinds of printed records.
const (
	kindPing  = "ping"
	kindHop   = "hop"
	kindTrace = "trace"
)

// record is the structured form of a printed result.
type record struct {
	Kind    string `json:"kind" yaml:"kind"`
	Target  string `json:"target" yaml:"target"`
	Address string `json:"address" yaml:"address"`
	Source  string `json:"source,omitempty" yaml:"source,omitempty"`
	Name    string `json:"name,omitempty" yaml:"name,omitempty"`
	TTL     int    `json:"ttl,omitempty" yaml:"ttl,omitempty"`
	RTT     string `json:"rtt,omitempty" yaml:"rtt,omitempty"`
	Reached bool   `json:"reached" yaml:"reached"`
	Error   string `json:"error,omitempty" yaml:"error,omitempty"`
}

// printer writes results in the configured format. It is safe for
// concurrent use.
type printer struct {
	mu     sync.Mutex
	w      io.Writer
	format config.Output
}

func newPrinter(w io.Writer, format config.Output) *printer {
	if format == "" {
		format = config.OutputText
	}
	return &printer{w: w, format: format}
}

func (p *printer) result(t target, res ping.Result) error {
	rec := record{
		Kind:    kindPing,
		Target:  t.name,
		Address: t.ip.String(),
		TTL:     res.TTL,
		Reached: res.Err == nil,
		Error:   errString(res.Err),
	}
	if res.Source != nil {
		rec.Source = res.Source.String()
	}
	if rtt := res.RTT(); rtt > 0 {
		rec.RTT = rtt.String()
	}

	var line string
	if res.Err != nil {
		line = fmt.Sprintf("%s: %v", t, res.Err)
	} else {
		line = fmt.Sprintf("%s: reply from %s ttl=%d time=%s", t, res.Source, res.TTL, res.RTT())
	}
	return p.write(rec, line)
}

func (p *printer) hop(t target, h ping.Hop) error {
	rec := record{
		Kind:    kindHop,
		Target:  t.name,
		Address: t.ip.String(),
		Name:    h.Name,
		TTL:     h.TTL,
		Reached: h.Reached(),
		Error:   errString(h.Err),
	}
	if h.Source != nil {
		rec.Source = h.Source.String()
	}
	if rtt := h.RTT(); rtt > 0 {
		rec.RTT = rtt.String()
	}

	line := fmt.Sprintf("%s: %s", t, h)
	if h.Source != nil && h.Err != nil && !errors.Is(h.Err, ping.ErrTimeExceeded) {
		line = fmt.Sprintf("%s  !%v", line, h.Err)
	}
	return p.write(rec, line)
}

func (p *printer) traceDone(t target, err error) error {
	rec := record{
		Kind:    kindTrace,
		Target:  t.name,
		Address: t.ip.String(),
		Reached: err == nil,
		Error:   errString(err),
	}
	line := fmt.Sprintf("%s: reached", t)
	if err != nil {
		line = fmt.Sprintf("%s: %v", t, err)
	}
	return p.write(rec, line)
}

func (p *printer) write(rec record, line string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	switch p.format {
	case config.OutputJSON:
		return json.NewEncoder(p.w).Encode(rec)
	case config.OutputYAML:
		b, err := yaml.Marshal(rec)
		if err != nil {
			return fmt.Errorf("failed to marshal %s record: %w", rec.Kind, err)
		}
		_, err = fmt.Fprintf(p.w, "---\n%s", b)
		return err
	default:
		_, err := fmt.Fprintln(p.w, line)
		return err
	}
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
