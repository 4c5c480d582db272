package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/theirongolddev/dayline/internal/source"
	"github.com/theirongolddev/dayline/internal/store"
)

func syntheticExports(b *testing.B, users, linesPerFile int) string {
	b.Helper()
	dir := b.TempDir()
	for u := 0; u < users; u++ {
		var sb strings.Builder
		for i := 0; i < linesPerFile; i++ {
			fmt.Fprintf(&sb, `{"item_id":"h%d","day":"2024-%02d-%02d","completed":true,"value":1}`+"\n", i%5, 1+i%12, 1+i%28)
		}
		path := filepath.Join(dir, fmt.Sprintf("user%d", u), "completions.jsonl")
		if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
			b.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(sb.String()), 0o600); err != nil {
			b.Fatal(err)
		}
	}
	return dir
}

func BenchmarkImport(b *testing.B) {
	dir := syntheticExports(b, 8, 500)
	log, _ := test.NewNullLogger()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		b.StopTimer()
		st, err := store.Open(filepath.Join(b.TempDir(), "bench.db"))
		if err != nil {
			b.Fatal(err)
		}
		b.StartTimer()

		if _, err := Import(context.Background(), dir, st, log, nil); err != nil {
			b.Fatal(err)
		}
		_ = st.Close()
	}
}

func BenchmarkParseFile(b *testing.B) {
	dir := syntheticExports(b, 1, 5000)
	files, err := source.ScanDir(dir)
	if err != nil || len(files) == 0 {
		b.Fatal("no synthetic exports", err)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		result := source.ParseFile(files[0])
		if result.Err != nil {
			b.Fatal(result.Err)
		}
	}
}

func BenchmarkScanDir(b *testing.B) {
	dir := syntheticExports(b, 32, 1)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := source.ScanDir(dir); err != nil {
			b.Fatal(err)
		}
	}
}
