package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"ammCore/internal/model"
)

type liquidityOutput struct {
	Pool      model.Pool       `json:"pool"`
	Shares    uint64           `json:"shares"`
	AmountX   uint64           `json:"amount_x"`
	AmountY   uint64           `json:"amount_y"`
	Transfers []model.Transfer `json:"transfers"`
}

type swapOutput struct {
	Pool      *model.Pool      `json:"pool,omitempty"`
	Direction model.Direction  `json:"direction"`
	AmountIn  uint64           `json:"amount_in"`
	AmountOut uint64           `json:"amount_out"`
	Fee       uint64           `json:"fee"`
	Transfers []model.Transfer `json:"transfers,omitempty"`
}

type balanceOutput struct {
	Asset   string `json:"asset"`
	Account string `json:"account"`
	Balance uint64 `json:"balance"`
}

func printJSON(w io.Writer, value any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(value); err != nil {
		return fmt.Errorf("encode output: %w", err)
	}
	return nil
}

type jsonlWriter struct {
	file   *os.File
	writer *bufio.Writer
}

func newJSONLWriter(path string) (*jsonlWriter, error) {
	dir := filepath.Dir(path)
	if dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create dir: %w", err)
		}
	}

	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}

	return &jsonlWriter{
		file:   file,
		writer: bufio.NewWriter(file),
	}, nil
}

func (w *jsonlWriter) Write(value any) error {
	line, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshal: %w", err)
	}
	if _, err := w.writer.Write(line); err != nil {
		return fmt.Errorf("write: %w", err)
	}
	if err := w.writer.WriteByte('\n'); err != nil {
		return fmt.Errorf("write newline: %w", err)
	}
	return nil
}

func (w *jsonlWriter) Close() error {
	if w == nil {
		return nil
	}
	if err := w.writer.Flush(); err != nil {
		w.file.Close()
		return err
	}
	return w.file.Close()
}
