package vfile

import (
	"encoding/json"

	"github.com/flowforge/flowforge/pkg/iocap"
	"github.com/flowforge/flowforge/pkg/pathutil"
)

// Load reads SrcPath asynchronously unless content is already present or the
// engine is in ModeClean, and delivers completion to cb. Read errors are
// attached to the file as a diagnostic rather than aborting the caller.
func (f *File) Load(cb func(error)) {
	f.mu.Lock()
	already := f.haveSrcBuf || f.haveSrcTxt
	f.mu.Unlock()

	if already || f.Generated() || f.defaults.Mode == ModeClean {
		cb(nil)
		return
	}

	io := f.defaults.IO
	if io == nil {
		io = iocap.New(nil)
	}
	io.ReadFile(f.srcPath, func(data []byte, err error) {
		if err != nil {
			f.Error(err.Error())
			cb(err)
			return
		}
		f.mu.Lock()
		f.srcBuffer = data
		f.haveSrcBuf = true
		f.mu.Unlock()
		cb(nil)
	})
}

// Save runs the six-step save algorithm: validation hook, overwrite guard,
// working-mode dispatch, source-map assembly and emission, persistence, and
// cache-store update.
func (f *File) Save(cb func(error)) {
	if f.defaults.Validate != nil && !f.defaults.Validate(f) {
		cb(nil)
		return
	}

	mode := f.defaults.Mode
	if mode == ModeClean {
		outPath := f.Path()
		io := f.defaults.IO
		if io == nil {
			io = iocap.New(nil)
		}
		io.DeleteFile(outPath+".map", func(error) {
			io.DeleteFile(outPath, func(err error) {
				if err != nil {
					f.Error(err.Error())
				} else {
					_ = iocap.DeleteParentDirIfEmpty(outPath, f.defaults.WorkingDir)
				}
				cb(err)
			})
		})
		return
	}

	destPath := f.Path()
	data, err := f.Buffer()
	if err != nil {
		f.Error(err.Error())
		cb(err)
		return
	}

	var sidecarPath, sidecarJSON string
	inline := false
	if f.wantsSourceMap() {
		encoded, ref, err := f.renderSourceMap(destPath)
		if err != nil {
			f.Warn("save: " + err.Error())
		} else if encoded != "" {
			data = append(append([]byte{}, data...), []byte(f.sourceMapComment(destPath, ref))...)
			inline = f.wantsInlineSourceMap()
			if !inline {
				sidecarPath, sidecarJSON = destPath+".map", encoded
			}
		}
	}

	if mode == ModePreview {
		cb(nil)
		return
	}

	io := f.defaults.IO
	if io == nil {
		io = iocap.New(nil)
	}
	overwrite := f.defaults.Overwrite
	io.WriteFile(destPath, data, overwrite, func(err error) {
		if err != nil {
			f.Error(err.Error())
			cb(err)
			return
		}
		finish := func() {
			if f.defaults.Cache != nil {
				f.defaults.Cache.RecordOutput(f.srcPath, destPath)
				if sidecarPath != "" {
					f.defaults.Cache.RecordOutput(f.srcPath, sidecarPath)
				}
			}
			cb(nil)
		}
		if sidecarPath == "" {
			finish()
			return
		}
		io.WriteFile(sidecarPath, []byte(sidecarJSON), true, func(err error) {
			if err != nil {
				f.Error(err.Error())
				cb(err)
				return
			}
			finish()
		})
	})
}

// Delete removes SrcPath without pruning parent directories; use
// DeleteWithOptions to prune them.
func (f *File) Delete(cb func(error)) {
	f.DeleteWithOptions(false, cb)
}

// DeleteWithOptions removes SrcPath and, only when pruneEmptyParent is set,
// removes its parent directories upward while they are empty, stopping at
// the working directory.
func (f *File) DeleteWithOptions(pruneEmptyParent bool, cb func(error)) {
	if f.Generated() {
		cb(nil)
		return
	}
	io := f.defaults.IO
	if io == nil {
		io = iocap.New(nil)
	}
	io.DeleteFile(f.srcPath, func(err error) {
		if err != nil {
			f.Error(err.Error())
			cb(err)
			return
		}
		if pruneEmptyParent {
			_ = iocap.DeleteParentDirIfEmpty(f.srcPath, f.defaults.WorkingDir)
		}
		cb(nil)
	})
}

func (f *File) wantsSourceMap() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.haveSourceMap {
		return false
	}
	return f.sourceMapsOverride.Get(f.defaults.SourceMaps)
}

func (f *File) wantsInlineSourceMap() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.sourceMapInlineOverride.Get(f.defaults.SourceMapInline)
}

// renderSourceMap serializes the file's attached map to JSON, filling in
// SourcesContent from the SourceMapSourceContent hook where the map doesn't
// already carry it and rewriting Sources through the SourceMapSource hook
// when one is set, and returns the encoded JSON plus the reference that belongs in
// the emitted comment (a map filename relative to destPath's directory for
// external maps, a data URI for inline ones). The returned JSON always
// reflects the File/SourcesContent fields set here, since those are applied
// to object in place rather than to whatever data.JSON() would otherwise
// re-derive from the underlying builder.
func (f *File) renderSourceMap(destPath string) (string, string, error) {
	f.mu.Lock()
	data := f.sourceMapData
	f.mu.Unlock()

	object, err := data.Object()
	if err != nil {
		return "", "", err
	}
	object.File = pathutil.Base(destPath)

	includeContent := f.sourceMapContentOverride.Get(f.defaults.SourceMapIncludeContent)
	if includeContent && f.defaults.SourceMapSourceContent != nil {
		for i, src := range object.Sources {
			if i < len(object.SourcesContent) && object.SourcesContent[i] != "" {
				continue
			}
			if content, ok := f.defaults.SourceMapSourceContent(src); ok {
				for len(object.SourcesContent) <= i {
					object.SourcesContent = append(object.SourcesContent, "")
				}
				object.SourcesContent[i] = content
			}
		}
	}
	if f.defaults.SourceMapSource != nil {
		sources := make([]string, len(object.Sources))
		for i, src := range object.Sources {
			sources[i] = f.defaults.SourceMapSource(src)
		}
		object.Sources = sources
	}

	raw, err := json.Marshal(object)
	if err != nil {
		return "", "", err
	}
	encoded := string(raw)
	if f.defaults.SourceMapJSON != nil {
		encoded = f.defaults.SourceMapJSON(f, object, encoded)
	}

	if f.wantsInlineSourceMap() {
		return encoded, pathutil.DataURI("application/json;charset=utf-8", []byte(encoded)), nil
	}
	return encoded, pathutil.Base(destPath) + ".map", nil
}

func (f *File) sourceMapComment(destPath, ref string) string {
	body := "sourceMappingURL=" + ref
	if pathutil.IsLineCommentExt(destPath) {
		return "\n//# " + body + "\n"
	}
	return "\n/*# " + body + " */\n"
}
