package benchmark

import (
	"context"
	"io"

	"github.com/user/rsakit/internal/textbook"
)

// SequentialGenerator generates p and q one after the other on the calling goroutine.
type SequentialGenerator struct{}

func (s *SequentialGenerator) Name() string {
	return "sequential"
}

func (s *SequentialGenerator) Generate(ctx context.Context, random io.Reader, bits int) (*textbook.Keypair, error) {
	return textbook.GenerateKeypair(ctx, textbook.NewContextReader(ctx, random), bits)
}
