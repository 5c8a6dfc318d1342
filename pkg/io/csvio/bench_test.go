package csvio

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func BenchmarkReadFile(b *testing.B) {
	var sb strings.Builder
	sb.WriteString("id,x,label\n")
	for i := 0; i < 5000; i++ {
		if i%7 == 0 {
			fmt.Fprintf(&sb, "%d,,l%d\n", i, i%5)
			continue
		}
		fmt.Fprintf(&sb, "%d,%g,l%d\n", i, float64(i)/3, i%5)
	}
	p := filepath.Join(b.TempDir(), "bench.csv")
	if err := os.WriteFile(p, []byte(sb.String()), 0o644); err != nil {
		b.Fatal(err)
	}
	b.ResetTimer()
	for n := 0; n < b.N; n++ {
		fr, _, err := ReadFile(p, ReaderOptions{})
		if err != nil {
			b.Fatal(err)
		}
		if fr.Rows() == 0 {
			b.Fatal("no rows")
		}
	}
}
