/*
Copyright © 2025 NVIDIA Corporation
SPDX-License-Identifier: Apache-2.0
*/
package cli

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"sync"
)

// linePrompter reads one line of input per question.
type linePrompter struct {
	mu  sync.Mutex
	in  *bufio.Reader
	out io.Writer
}

func newLinePrompter(in io.Reader, out io.Writer) *linePrompter {
	return &linePrompter{in: bufio.NewReader(in), out: out}
}

// Confirm writes prompt and returns the trimmed answer. End of input with no
// answer returns io.EOF.
func (p *linePrompter) Confirm(prompt string) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	fmt.Fprint(p.out, prompt)
	line, err := p.in.ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		fmt.Fprintln(p.out)
		return "", err
	}
	return strings.TrimSpace(line), nil
}
