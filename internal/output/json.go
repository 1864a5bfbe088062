/*
PURPOSE:
  Writes the launcher outcome as a single JSON line (NDJSON).
  Lets automation harnesses read the result without scraping status text.

REQUIREMENTS:
  User-specified:
  - Exit code stays the primary result channel.

  Implementation-discovered:
  - JSON Lines keeps the record append-friendly when a harness collects many runs.

ARCHITECTURE INTEGRATION:
  - Called by: internal/cli (--json)
  - Consumes: internal/model.Outcome

ERROR HANDLING:
  - Returns error on write failure.

IMPLEMENTATION RULES:
  - Use encoding/json.NewEncoder.
  - Thread-safe.

USAGE:
  w := output.NewJSONWriter(os.Stdout)
  w.Write(outcome)

SELF-HEALING INSTRUCTIONS:
  - None specific.

RELATED FILES:
  - internal/model/types.go

MAINTENANCE:
  - Keep field names stable; harnesses parse them.
*/

package output

import (
	"encoding/json"
	"io"
	"sync"

	"github.com/daryltucker/collect-snapshot/internal/model"
)

// JSONWriter writes outcomes as JSON lines.
type JSONWriter struct {
	encoder *json.Encoder
	mu      sync.Mutex
}

// NewJSONWriter creates a new JSONWriter on w.
func NewJSONWriter(w io.Writer) *JSONWriter {
	return &JSONWriter{
		encoder: json.NewEncoder(w),
	}
}

// Write writes a single outcome as a JSON line.
func (jw *JSONWriter) Write(o model.Outcome) error {
	jw.mu.Lock()
	defer jw.mu.Unlock()

	return jw.encoder.Encode(o)
}
