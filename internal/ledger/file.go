package ledger

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/eddiefleurent/wheelhouse/internal/models"
)

// FileSource reads a trade ledger from a JSON export on disk: either a bare
// array of trade records or an object with a "trades" key, which is what the
// download endpoints of most brokers produce.
type FileSource struct {
	path string
}

// NewFileSource creates a file-backed ledger source.
func NewFileSource(path string) *FileSource {
	return &FileSource{path: path}
}

// Trades loads, normalizes and chronologically sorts the ledger file.
func (f *FileSource) Trades(_ context.Context) ([]models.Trade, error) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		return nil, fmt.Errorf("reading ledger file: %w", err)
	}

	var trades []models.Trade
	if err := json.Unmarshal(data, &trades); err != nil {
		var wrapped struct {
			Trades []models.Trade `json:"trades"`
		}
		if err2 := json.Unmarshal(data, &wrapped); err2 != nil {
			return nil, fmt.Errorf("parsing ledger file %s: %w", f.path, err)
		}
		trades = wrapped.Trades
	}

	for i := range trades {
		Normalize(&trades[i])
	}
	SortChronological(trades)
	return trades, nil
}

// Ensure FileSource implements Source at compile time.
var _ Source = (*FileSource)(nil)
