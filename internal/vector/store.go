package vector

import (
	"context"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/lioncity/rentqa/internal/embedding"
	"github.com/lioncity/rentqa/internal/models"
)

// Store persists an Index as two companion artifacts in one directory:
// {name}.vec holds the raw vectors, {name}.db is the SQLite chunk sidecar.
// Both must exist, agree on the chunk count, and carry the same generation
// stamp for a load to succeed.
type Store struct {
	dir    string
	name   string
	logger *zap.Logger
}

// NewStore creates a store for the given directory and index name.
func NewStore(dir, name string, logger *zap.Logger) *Store {
	return &Store{dir: dir, name: name, logger: logger}
}

// VectorPath returns the path of the binary vector artifact.
func (s *Store) VectorPath() string { return filepath.Join(s.dir, s.name+".vec") }

// SidecarPath returns the path of the chunk sidecar artifact.
func (s *Store) SidecarPath() string { return filepath.Join(s.dir, s.name+".db") }

// Load reads both artifacts and rebuilds the index. It returns ok=false when
// no valid index exists: missing artifact, unreadable artifact, count
// mismatch, or zero vectors. The specific reason is logged for operators;
// callers only see presence or absence.
func (s *Store) Load() (*Index, bool) {
	vecPath, dbPath := s.VectorPath(), s.SidecarPath()
	for _, path := range []string{vecPath, dbPath} {
		if _, err := os.Stat(path); err != nil {
			s.logger.Info("index artifact missing", zap.String("path", path))
			return nil, false
		}
	}

	dimensions, vecGen, vectors, err := readVectors(vecPath)
	if err != nil {
		s.logger.Warn("index vector artifact unreadable", zap.String("path", vecPath), zap.Error(err))
		return nil, false
	}
	dbGen, chunks, err := readSidecar(dbPath)
	if err != nil {
		s.logger.Warn("index sidecar unreadable", zap.String("path", dbPath), zap.Error(err))
		return nil, false
	}
	if vecGen != dbGen {
		s.logger.Warn("index artifacts from different saves",
			zap.Uint64("vector_generation", vecGen), zap.Uint64("sidecar_generation", dbGen))
		return nil, false
	}
	if len(chunks) != len(vectors) {
		s.logger.Warn("index artifacts inconsistent",
			zap.Int("vectors", len(vectors)), zap.Int("chunks", len(chunks)))
		return nil, false
	}
	if len(vectors) == 0 {
		s.logger.Info("index is empty, treating as absent")
		return nil, false
	}

	idx, err := NewIndex(dimensions)
	if err != nil {
		s.logger.Warn("index dimension invalid", zap.Int("dimensions", dimensions))
		return nil, false
	}
	if err := idx.Add(chunks, vectors); err != nil {
		s.logger.Warn("index rebuild failed", zap.Error(err))
		return nil, false
	}
	s.logger.Info("index loaded",
		zap.Int("chunks", idx.Size()), zap.Int("dimensions", dimensions))
	return idx, true
}

// Save writes both artifacts. Each is written to a temporary name and renamed
// into place, sidecar first and vectors last. A shared generation stamp goes
// into both, so a crash between the two renames leaves a mixed pair that Load
// rejects instead of a silently mismatched index.
func (s *Store) Save(idx *Index) error {
	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return fmt.Errorf("create index dir: %w", err)
	}
	chunks, vectors := idx.snapshot()
	generation := uint64(time.Now().UnixNano())

	dbTmp := s.SidecarPath() + ".tmp"
	_ = os.Remove(dbTmp)
	if err := writeSidecar(dbTmp, generation, chunks); err != nil {
		_ = os.Remove(dbTmp)
		return err
	}
	vecTmp := s.VectorPath() + ".tmp"
	if err := writeVectors(vecTmp, idx.Dimensions(), generation, vectors); err != nil {
		_ = os.Remove(dbTmp)
		_ = os.Remove(vecTmp)
		return err
	}

	if err := os.Rename(dbTmp, s.SidecarPath()); err != nil {
		_ = os.Remove(dbTmp)
		_ = os.Remove(vecTmp)
		return fmt.Errorf("move sidecar into place: %w", err)
	}
	if err := os.Rename(vecTmp, s.VectorPath()); err != nil {
		_ = os.Remove(vecTmp)
		return fmt.Errorf("move vectors into place: %w", err)
	}
	s.logger.Info("index saved", zap.String("dir", s.dir), zap.Int("chunks", len(chunks)))
	return nil
}

// CreateFromChunks embeds every chunk's content and builds a fresh index.
func CreateFromChunks(ctx context.Context, chunks []models.DocumentChunk, emb embedding.Embedder) (*Index, error) {
	idx, err := NewIndex(emb.Dimensions())
	if err != nil {
		return nil, err
	}
	if err := AddChunks(ctx, idx, chunks, emb); err != nil {
		return nil, err
	}
	return idx, nil
}

// AddChunks embeds and appends chunks to an existing index. Deduplication is
// the ingestion caller's policy; the store appends what it is given.
func AddChunks(ctx context.Context, idx *Index, chunks []models.DocumentChunk, emb embedding.Embedder) error {
	if len(chunks) == 0 {
		return nil
	}
	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Content
	}
	vectors, err := emb.EmbedBatch(ctx, texts)
	if err != nil {
		return fmt.Errorf("embed chunks: %w", err)
	}
	return idx.Add(chunks, vectors)
}

// Vector artifact format, little-endian: dimensions (4), count (4),
// generation (8), then count*dimensions float32 values. The generation is
// repeated in the sidecar's meta table and must match on load.

func writeVectors(path string, dimensions int, generation uint64, vectors [][]float32) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create vector file: %w", err)
	}
	defer f.Close()
	if err := binary.Write(f, binary.LittleEndian, uint32(dimensions)); err != nil {
		return fmt.Errorf("write dimensions: %w", err)
	}
	if err := binary.Write(f, binary.LittleEndian, uint32(len(vectors))); err != nil {
		return fmt.Errorf("write count: %w", err)
	}
	if err := binary.Write(f, binary.LittleEndian, generation); err != nil {
		return fmt.Errorf("write generation: %w", err)
	}
	for _, vec := range vectors {
		if _, err := f.Write(float32SliceToBytes(vec)); err != nil {
			return fmt.Errorf("write vector: %w", err)
		}
	}
	return nil
}

func readVectors(path string) (int, uint64, [][]float32, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, 0, nil, fmt.Errorf("open vector file: %w", err)
	}
	defer f.Close()
	var dim, n uint32
	if err := binary.Read(f, binary.LittleEndian, &dim); err != nil {
		return 0, 0, nil, fmt.Errorf("read dimensions: %w", err)
	}
	if dim == 0 || dim > 1<<16 {
		return 0, 0, nil, fmt.Errorf("implausible dimension %d", dim)
	}
	if err := binary.Read(f, binary.LittleEndian, &n); err != nil {
		return 0, 0, nil, fmt.Errorf("read count: %w", err)
	}
	var generation uint64
	if err := binary.Read(f, binary.LittleEndian, &generation); err != nil {
		return 0, 0, nil, fmt.Errorf("read generation: %w", err)
	}
	vectors := make([][]float32, 0, n)
	buf := make([]byte, int(dim)*4)
	for i := uint32(0); i < n; i++ {
		if _, err := io.ReadFull(f, buf); err != nil {
			return 0, 0, nil, fmt.Errorf("read vector %d: %w", i, err)
		}
		vectors = append(vectors, bytesToFloat32Slice(buf))
	}
	return int(dim), generation, vectors, nil
}

func float32SliceToBytes(s []float32) []byte {
	const size = 4
	out := make([]byte, len(s)*size)
	for i, v := range s {
		binary.LittleEndian.PutUint32(out[i*size:(i+1)*size], math.Float32bits(v))
	}
	return out
}

func bytesToFloat32Slice(b []byte) []float32 {
	const size = 4
	out := make([]float32, len(b)/size)
	for i := range out {
		out[i] = math.Float32frombits(binary.LittleEndian.Uint32(b[i*size : (i+1)*size]))
	}
	return out
}
