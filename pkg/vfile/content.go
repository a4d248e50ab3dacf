package vfile

import (
	"github.com/flowforge/flowforge/pkg/iocap"
	"github.com/flowforge/flowforge/pkg/sourcemap"
)

// SrcBuffer returns the file's source bytes, lifting them from disk on
// first access unless the engine is in ModeClean.
func (f *File) SrcBuffer() ([]byte, error) {
	f.mu.Lock()
	if f.haveSrcBuf {
		buf := f.srcBuffer
		f.mu.Unlock()
		return buf, nil
	}
	if f.haveSrcTxt {
		txt := f.srcContent
		f.mu.Unlock()
		enc := f.Encoding()
		encoded, err := enc.Encode(txt)
		if err != nil {
			return nil, err
		}
		f.mu.Lock()
		f.srcBuffer = encoded
		f.haveSrcBuf = true
		f.mu.Unlock()
		return encoded, nil
	}
	f.mu.Unlock()

	if f.Generated() || f.defaults.Mode == ModeClean {
		return nil, nil
	}
	data, err := iocap.ReadFileSync(f.srcPath)
	if err != nil {
		f.Error(err.Error())
		return nil, err
	}
	f.mu.Lock()
	f.srcBuffer = data
	f.haveSrcBuf = true
	f.mu.Unlock()
	return data, nil
}

// SrcContent returns the file's source text, decoding from SrcBuffer if
// necessary.
func (f *File) SrcContent() (string, error) {
	f.mu.Lock()
	if f.haveSrcTxt {
		txt := f.srcContent
		f.mu.Unlock()
		return txt, nil
	}
	f.mu.Unlock()

	buf, err := f.SrcBuffer()
	if err != nil {
		return "", err
	}
	enc := f.Encoding()
	text, err := enc.Decode(buf)
	if err != nil {
		return "", err
	}
	f.mu.Lock()
	f.srcContent = text
	f.haveSrcTxt = true
	f.mu.Unlock()
	return text, nil
}

// Buffer returns the file's current bytes: the dest slot if modified, else
// the source slot when unmodified.
func (f *File) Buffer() ([]byte, error) {
	f.mu.Lock()
	if f.haveDestBuf {
		buf := f.destBuffer
		f.mu.Unlock()
		return buf, nil
	}
	if f.haveDestTxt {
		txt := f.destContent
		f.mu.Unlock()
		enc := f.Encoding()
		encoded, err := enc.Encode(txt)
		if err != nil {
			return nil, err
		}
		f.mu.Lock()
		f.destBuffer = encoded
		f.haveDestBuf = true
		f.haveDestTxt = false
		f.destContent = ""
		f.mu.Unlock()
		return encoded, nil
	}
	f.mu.Unlock()
	return f.SrcBuffer()
}

// Content returns the file's current text, the dual of Buffer.
func (f *File) Content() (string, error) {
	f.mu.Lock()
	if f.haveDestTxt {
		txt := f.destContent
		f.mu.Unlock()
		return txt, nil
	}
	if f.haveDestBuf {
		buf := f.destBuffer
		f.mu.Unlock()
		enc := f.Encoding()
		text, err := enc.Decode(buf)
		if err != nil {
			return "", err
		}
		f.mu.Lock()
		f.destContent = text
		f.haveDestTxt = true
		f.haveDestBuf = false
		f.destBuffer = nil
		f.mu.Unlock()
		return text, nil
	}
	f.mu.Unlock()
	return f.SrcContent()
}

// SetBuffer writes raw bytes to the dest slot, clearing destContent and
// marking the file modified.
func (f *File) SetBuffer(data []byte) {
	f.mu.Lock()
	f.destBuffer = data
	f.haveDestBuf = true
	f.destContent = ""
	f.haveDestTxt = false
	f.mu.Unlock()
	f.clearIndexes()
}

// SetContent writes text to the dest slot, clearing destBuffer and marking
// the file modified.
func (f *File) SetContent(text string) {
	f.mu.Lock()
	f.destContent = text
	f.haveDestTxt = true
	f.destBuffer = nil
	f.haveDestBuf = false
	f.mu.Unlock()
	f.clearIndexes()
}

// Data returns the file's current content, preferring text when both
// representations could apply, the generic accessor downstream processors
// use when they don't care which form they get.
func (f *File) Data() (any, error) {
	f.mu.Lock()
	preferText := f.haveDestTxt || (!f.haveDestBuf && f.haveSrcTxt)
	f.mu.Unlock()
	if preferText {
		return f.Content()
	}
	return f.Buffer()
}

// SourceMap returns the file's current source-map data and whether one has
// been attached at all.
func (f *File) SourceMap() (sourcemap.Data, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.sourceMapData, f.haveSourceMap
}

// SetSourceMap replaces the file's source-map data outright.
func (f *File) SetSourceMap(data sourcemap.Data) {
	f.mu.Lock()
	f.sourceMapData = data
	f.haveSourceMap = true
	f.mu.Unlock()
}

// ApplySourceMap merges m into the file's current map via builder
// composition (existing ∘ m). A composition failure demotes to a warning
// and keeps the original map.
func (f *File) ApplySourceMap(m sourcemap.Data) {
	incoming, err := m.Builder()
	if err != nil {
		f.Warn("applySourceMap: " + err.Error())
		return
	}

	f.mu.Lock()
	have := f.haveSourceMap
	existing := f.sourceMapData
	f.mu.Unlock()

	if !have {
		f.SetSourceMap(m)
		return
	}

	existingBuilder, err := existing.Builder()
	if err != nil {
		f.Warn("applySourceMap: " + err.Error())
		return
	}

	composed := incoming.Compose(existingBuilder)
	f.SetSourceMap(sourcemap.FromBuilder(composed))
}

// Dep records a dependency edge from this file's source to target: changes
// to target require a full rebuild of this file.
func (f *File) Dep(target string, log *LogEntry) {
	if f.defaults.Deps != nil {
		f.defaults.Deps.AddDep(f.srcPath, target, log)
	}
}

// Ref records a reference edge from this file's source to target: changes
// to target require only a content-only refresh.
func (f *File) Ref(target string, log *LogEntry) {
	if f.defaults.Deps != nil {
		f.defaults.Deps.AddRef(f.srcPath, target, log)
	}
}
