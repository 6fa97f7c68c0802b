package embedding

import (
	"context"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"

	ort "github.com/yalue/onnxruntime_go"
)

var errSVDFailed = errors.New("embedding: svd factorization failed")

var runtimeInitialized bool

// ensureRuntimeInitialized starts the ONNX runtime environment once per
// process; InitializeEnvironment errors if called twice.
func ensureRuntimeInitialized() error {
	if runtimeInitialized {
		return nil
	}
	if err := ort.InitializeEnvironment(); err != nil {
		return err
	}
	runtimeInitialized = true
	return nil
}

// modelCandidates lists local transformer model directories attempted in
// priority order before falling back to TF-IDF (spec.md §4.2). Each is a
// directory under model_dir containing model.onnx and vocab.txt.
var modelCandidates = []string{
	"all-MiniLM-L6-v2",
	"all-MiniLM-L12-v2",
	"paraphrase-MiniLM-L3-v2",
}

const (
	maxSequenceLength = 256
	clsTokenID        = 101
	sepTokenID        = 102
	unkTokenID        = 100
	padTokenID        = 0
)

// transformerModel wraps a loaded ONNX sentence-transformer session plus its
// WordPiece vocabulary, mirroring the session-load/tokenize/batch-embed shape
// used by local embedding engines elsewhere in the pack.
type transformerModel struct {
	session *ort.AdvancedSession
	input   *ort.Tensor[int64]
	mask    *ort.Tensor[int64]
	output  *ort.Tensor[float32]
	vocab   map[string]int64
	dim     int
	name    string
}

// loadTransformer tries each candidate under modelDir in order, returning the
// first that loads successfully. Returns (nil, false) if none do, which is
// the normal, handled path when no local model assets are installed.
func loadTransformer(modelDir string) (*transformerModel, bool) {
	if modelDir == "" {
		return nil, false
	}
	for _, name := range modelCandidates {
		dir := filepath.Join(modelDir, name)
		m, err := openTransformer(dir, name)
		if err != nil {
			continue
		}
		return m, true
	}
	return nil, false
}

func openTransformer(dir, name string) (*transformerModel, error) {
	modelPath := filepath.Join(dir, "model.onnx")
	vocabPath := filepath.Join(dir, "vocab.txt")
	if _, err := os.Stat(modelPath); err != nil {
		return nil, err
	}
	vocab, err := loadVocab(vocabPath)
	if err != nil {
		return nil, err
	}

	if err := ensureRuntimeInitialized(); err != nil {
		return nil, fmt.Errorf("initialize onnxruntime: %w", err)
	}

	inputShape := ort.NewShape(1, maxSequenceLength)
	inputTensor, err := ort.NewEmptyTensor[int64](inputShape)
	if err != nil {
		return nil, err
	}
	maskTensor, err := ort.NewEmptyTensor[int64](inputShape)
	if err != nil {
		return nil, err
	}
	outputShape := ort.NewShape(1, maxSequenceLength, 384)
	outputTensor, err := ort.NewEmptyTensor[float32](outputShape)
	if err != nil {
		return nil, err
	}

	session, err := ort.NewAdvancedSession(modelPath,
		[]string{"input_ids", "attention_mask"},
		[]string{"last_hidden_state"},
		[]ort.ArbitraryTensor{inputTensor, maskTensor},
		[]ort.ArbitraryTensor{outputTensor},
		nil)
	if err != nil {
		return nil, fmt.Errorf("create onnx session for %s: %w", name, err)
	}

	return &transformerModel{
		session: session,
		input:   inputTensor,
		mask:    maskTensor,
		output:  outputTensor,
		vocab:   vocab,
		dim:     384,
		name:    name,
	}, nil
}

func (m *transformerModel) Close() {
	if m.session != nil {
		m.session.Destroy()
	}
	if m.input != nil {
		m.input.Destroy()
	}
	if m.mask != nil {
		m.mask.Destroy()
	}
	if m.output != nil {
		m.output.Destroy()
	}
}

// embedAll runs each text through the model sequentially (batch size 1; the
// workload here is bounded by episode sentence counts, not throughput).
func (m *transformerModel) embedAll(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, text := range texts {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		vec, err := m.embedOne(text)
		if err != nil {
			return nil, fmt.Errorf("embed sentence %d: %w", i, err)
		}
		out[i] = vec
	}
	return out, nil
}

func (m *transformerModel) embedOne(text string) ([]float32, error) {
	ids := tokenize(text, m.vocab)

	inputData := m.input.GetData()
	maskData := m.mask.GetData()
	for i := range inputData {
		inputData[i] = padTokenID
		maskData[i] = 0
	}
	for i, id := range ids {
		if i >= maxSequenceLength {
			break
		}
		inputData[i] = id
		maskData[i] = 1
	}

	if err := m.session.Run(); err != nil {
		return nil, fmt.Errorf("run session: %w", err)
	}

	return meanPool(m.output.GetData(), maskData, maxSequenceLength, m.dim), nil
}

// meanPool averages token embeddings over non-padding positions, then
// L2-normalizes, following the standard sentence-transformer pooling recipe.
func meanPool(hidden []float32, mask []int64, seqLen, dim int) []float32 {
	sum := make([]float64, dim)
	var count float64
	for t := 0; t < seqLen; t++ {
		if mask[t] == 0 {
			continue
		}
		count++
		base := t * dim
		for d := 0; d < dim; d++ {
			sum[d] += float64(hidden[base+d])
		}
	}
	if count == 0 {
		count = 1
	}
	out := make([]float32, dim)
	var norm float64
	for d := 0; d < dim; d++ {
		v := sum[d] / count
		out[d] = float32(v)
		norm += v * v
	}
	norm = math.Sqrt(norm)
	if norm > 0 {
		for d := range out {
			out[d] = float32(float64(out[d]) / norm)
		}
	}
	return out
}

// tokenize is a greedy WordPiece tokenizer: longest-prefix-match lookups per
// subword, falling back to [UNK], bracketed by [CLS]/[SEP].
func tokenize(text string, vocab map[string]int64) []int64 {
	ids := make([]int64, 0, maxSequenceLength)
	ids = append(ids, clsTokenID)
	for _, word := range strings.Fields(strings.ToLower(text)) {
		ids = append(ids, wordPieces(word, vocab)...)
		if len(ids) >= maxSequenceLength-1 {
			break
		}
	}
	ids = append(ids, sepTokenID)
	return ids
}

func wordPieces(word string, vocab map[string]int64) []int64 {
	var pieces []int64
	remaining := word
	first := true
	for len(remaining) > 0 {
		end := len(remaining)
		matched := false
		for end > 0 {
			candidate := remaining[:end]
			if !first {
				candidate = "##" + candidate
			}
			if id, ok := vocab[candidate]; ok {
				pieces = append(pieces, id)
				remaining = remaining[end:]
				matched = true
				first = false
				break
			}
			end--
		}
		if !matched {
			return []int64{unkTokenID}
		}
	}
	return pieces
}

func loadVocab(path string) (map[string]int64, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	lines := strings.Split(string(data), "\n")
	vocab := make(map[string]int64, len(lines))
	for i, line := range lines {
		token := strings.TrimRight(line, "\r\n")
		if token == "" {
			continue
		}
		vocab[token] = int64(i)
	}
	return vocab, nil
}
