// Package emb runs a sentence-transformers style ONNX model through ONNX Runtime
// and turns token states into one normalized vector per text.
package emb

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"sync"

	"github.com/sugarme/tokenizer"
	"github.com/sugarme/tokenizer/pretrained"
	ort "github.com/yalue/onnxruntime_go"
)

// Config points the encoder at the runtime library, model and tokenizer files.
type Config struct {
	OrtDLL        string
	ModelPath     string
	TokenizerPath string
	MaxSeqLen     int
}

const defaultMaxSeqLen = 256

// Encoder wraps one ORT session. Encode calls are serialized.
type Encoder struct {
	mu         sync.Mutex
	cfg        Config
	tk         *tokenizer.Tokenizer
	session    *ort.DynamicAdvancedSession
	inputNames []string
	outputName string
	hiddenDim  int64
}

var (
	envMu    sync.Mutex
	envUsers int
)

// Init loads the runtime, tokenizer and model. It must be called before Encode.
func (e *Encoder) Init(cfg Config) error {
	if strings.TrimSpace(cfg.ModelPath) == "" {
		return errors.New("emb: model path is required")
	}
	if strings.TrimSpace(cfg.TokenizerPath) == "" {
		return errors.New("emb: tokenizer path is required")
	}
	if cfg.MaxSeqLen <= 0 {
		cfg.MaxSeqLen = defaultMaxSeqLen
	}
	tk, err := pretrained.FromFile(cfg.TokenizerPath)
	if err != nil {
		return fmt.Errorf("emb: load tokenizer: %w", err)
	}
	if err := acquireEnv(cfg.OrtDLL); err != nil {
		return err
	}
	inputs, outputs, err := ort.GetInputOutputInfo(cfg.ModelPath)
	if err != nil {
		releaseEnv()
		return fmt.Errorf("emb: inspect model: %w", err)
	}
	if len(outputs) == 0 {
		releaseEnv()
		return errors.New("emb: model has no outputs")
	}
	inputNames := make([]string, 0, len(inputs))
	for _, in := range inputs {
		inputNames = append(inputNames, in.Name)
	}
	out := outputs[0]
	dims := out.Dimensions
	if len(dims) != 3 || dims[2] <= 0 {
		releaseEnv()
		return fmt.Errorf("emb: unexpected output shape %v", dims)
	}
	session, err := ort.NewDynamicAdvancedSession(cfg.ModelPath, inputNames, []string{out.Name}, nil)
	if err != nil {
		releaseEnv()
		return fmt.Errorf("emb: create session: %w", err)
	}
	e.cfg = cfg
	e.tk = tk
	e.session = session
	e.inputNames = inputNames
	e.outputName = out.Name
	e.hiddenDim = dims[2]
	return nil
}

// Encode embeds one text.
func (e *Encoder) Encode(text string) ([]float32, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.session == nil || e.tk == nil {
		return nil, errors.New("emb: encoder is not initialized")
	}
	encoding, err := e.tk.EncodeSingle(text, true)
	if err != nil {
		return nil, fmt.Errorf("emb: tokenize: %w", err)
	}
	ids := truncate(toInt64(encoding.GetIds()), e.cfg.MaxSeqLen)
	mask := truncate(toInt64(encoding.GetAttentionMask()), e.cfg.MaxSeqLen)
	typeIDs := truncate(toInt64(encoding.GetTypeIds()), e.cfg.MaxSeqLen)
	seqLen := int64(len(ids))
	if seqLen == 0 {
		return nil, errors.New("emb: empty token sequence")
	}
	if len(typeIDs) != len(ids) {
		typeIDs = make([]int64, len(ids))
	}

	shape := ort.NewShape(1, seqLen)
	tensors := make([]ort.Value, 0, len(e.inputNames))
	defer func() {
		for _, t := range tensors {
			_ = t.Destroy()
		}
	}()
	for _, name := range e.inputNames {
		var data []int64
		switch name {
		case "input_ids":
			data = ids
		case "attention_mask":
			data = mask
		case "token_type_ids":
			data = typeIDs
		default:
			return nil, fmt.Errorf("emb: unsupported model input %q", name)
		}
		t, err := ort.NewTensor(shape, data)
		if err != nil {
			return nil, fmt.Errorf("emb: input tensor %s: %w", name, err)
		}
		tensors = append(tensors, t)
	}
	output, err := ort.NewEmptyTensor[float32](ort.NewShape(1, seqLen, e.hiddenDim))
	if err != nil {
		return nil, fmt.Errorf("emb: output tensor: %w", err)
	}
	defer output.Destroy()

	if err := e.session.Run(tensors, []ort.Value{output}); err != nil {
		return nil, fmt.Errorf("emb: run session: %w", err)
	}
	vec := MeanPool(output.GetData(), mask, int(e.hiddenDim))
	Normalize(vec)
	return vec, nil
}

// Close releases the session and, for the last encoder, the ORT environment.
func (e *Encoder) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.session == nil {
		return
	}
	_ = e.session.Destroy()
	e.session = nil
	e.tk = nil
	releaseEnv()
}

// MeanPool averages token states weighted by the attention mask.
// states is laid out as [len(mask)][dim].
func MeanPool(states []float32, mask []int64, dim int) []float32 {
	out := make([]float32, dim)
	if dim <= 0 || len(states) < len(mask)*dim {
		return out
	}
	var count float64
	acc := make([]float64, dim)
	for t, m := range mask {
		if m == 0 {
			continue
		}
		count++
		row := states[t*dim : (t+1)*dim]
		for i, v := range row {
			acc[i] += float64(v)
		}
	}
	if count == 0 {
		return out
	}
	for i := range acc {
		out[i] = float32(acc[i] / count)
	}
	return out
}

// Normalize scales vec to unit L2 norm in place. Zero vectors are left untouched.
func Normalize(vec []float32) {
	var sum float64
	for _, v := range vec {
		sum += float64(v) * float64(v)
	}
	if sum == 0 {
		return
	}
	inv := 1 / math.Sqrt(sum)
	for i := range vec {
		vec[i] = float32(float64(vec[i]) * inv)
	}
}

func acquireEnv(lib string) error {
	envMu.Lock()
	defer envMu.Unlock()
	if envUsers == 0 {
		if lib != "" {
			ort.SetSharedLibraryPath(lib)
		}
		if err := ort.InitializeEnvironment(); err != nil {
			return fmt.Errorf("emb: initialize onnxruntime: %w", err)
		}
	}
	envUsers++
	return nil
}

func releaseEnv() {
	envMu.Lock()
	defer envMu.Unlock()
	if envUsers == 0 {
		return
	}
	envUsers--
	if envUsers == 0 {
		_ = ort.DestroyEnvironment()
	}
}

func toInt64(in []int) []int64 {
	out := make([]int64, len(in))
	for i, v := range in {
		out[i] = int64(v)
	}
	return out
}

func truncate(in []int64, n int) []int64 {
	if n > 0 && len(in) > n {
		return in[:n]
	}
	return in
}
