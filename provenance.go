package imgcore

import (
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"imgcore/formats"
)

// Analyze reports whether the image at path is likely AI-generated, based on
// a C2PA marker, EXIF fields, PNG text chunks and WebP XMP. A file that
// cannot be read is an error; any parsing problem after that only turns the
// affected probe off.
func Analyze(path string) (ProvenanceVerdict, error) {
	return defaultEngine.Analyze(path)
}

// AnalyzeBytes is Analyze over an in-memory file. name is only used to
// guess the type when the bytes are not recognised.
func AnalyzeBytes(name string, data []byte) ProvenanceVerdict {
	return defaultEngine.AnalyzeBytes(name, data)
}

// Analyze is the engine form of the package-level Analyze.
func (e *Engine) Analyze(path string) (ProvenanceVerdict, error) {
	data, err := readFile(path)
	if err != nil {
		return ProvenanceVerdict{}, err
	}
	return e.AnalyzeBytes(path, data), nil
}

// AnalyzeBytes is the engine form of the package-level AnalyzeBytes.
func (e *Engine) AnalyzeBytes(name string, data []byte) ProvenanceVerdict {
	v := ProvenanceVerdict{Format: formatMIME(name, data)}
	m := newKeywordMatcher()

	if found, manifest := e.probeC2PA(name, data); found {
		v.Reasons = append(v.Reasons, ReasonC2PA)
		v.C2PAManifest = manifest
	}
	if e.probe(name, ReasonEXIF, func() (bool, error) { return probeEXIF(data, m) }) {
		v.Reasons = append(v.Reasons, ReasonEXIF)
	}
	if strings.Contains(v.Format, "png") &&
		e.probe(name, ReasonPNGText, func() (bool, error) { return probePNGText(data, m), nil }) {
		v.Reasons = append(v.Reasons, ReasonPNGText)
	}
	if strings.Contains(v.Format, "webp") &&
		e.probe(name, ReasonWebPXMP, func() (bool, error) { return probeWebPXMP(data, m), nil }) {
		v.Reasons = append(v.Reasons, ReasonWebPXMP)
	}

	v.LikelyAI = len(v.Reasons) > 0
	if v.LikelyAI {
		e.log.Info("provenance signals found", logName(name), zap.Strings("reasons", v.Reasons))
	}
	return v
}

// probe runs fn and degrades any error or panic to false.
func (e *Engine) probe(name, probe string, fn func() (bool, error)) (hit bool) {
	defer func() {
		if r := recover(); r != nil {
			e.log.Debug("probe panicked", logName(name), zap.String("probe", probe), zap.Any("panic", r))
			hit = false
		}
	}()
	hit, err := fn()
	if err != nil {
		e.log.Debug("probe failed", logName(name), zap.String("probe", probe), zap.Error(err))
		return false
	}
	return hit
}

func (e *Engine) probeC2PA(name string, data []byte) (found bool, manifest string) {
	e.probe(name, ReasonC2PA, func() (bool, error) {
		found, manifest = formats.FindC2PA(data)
		return found, nil
	})
	return found, manifest
}

// probeEXIF matches keywords against every tag name and displayed value.
func probeEXIF(data []byte, m *keywordMatcher) (bool, error) {
	x, err := formats.ReadEXIF(data)
	if errors.Is(err, formats.ErrNoEXIF) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("read EXIF: %w", err)
	}
	for _, f := range x.Fields() {
		if m.match(f.Name, x.Display(f)) {
			return true, nil
		}
	}
	return false, nil
}

func probePNGText(data []byte, m *keywordMatcher) bool {
	for _, c := range formats.PNGTextChunks(data) {
		if m.match(c.Key, c.Value) {
			return true
		}
	}
	return false
}

func probeWebPXMP(data []byte, m *keywordMatcher) bool {
	xmp, ok := formats.WebPXMP(data)
	return ok && m.match(xmp)
}
