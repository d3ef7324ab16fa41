package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/load"
	"cuelang.org/go/cue/token"

	"github.com/roach88/modinit/internal/compiler"
	"github.com/roach88/modinit/internal/ir"
)

// Error code constants shared by all commands. Manifest validation codes
// (E2xx) come from the compiler package.
const (
	ErrCodeGeneric     = "E001" // Generic/unknown error
	ErrCodeScanError   = "E002" // Directory scan error
	ErrCodeNoFiles     = "E003" // No CUE files found
	ErrCodeLoadFailed  = "E004" // CUE load failed
	ErrCodeNotFound    = "E005" // Path not found
	ErrCodeBuildFailed = "E006" // CUE build or manifest shape error
	ErrCodeJournal     = "E007" // Journal open/read/write error
	ErrCodeTableLimit  = "E008" // Module table exceeds --table-limit
	ErrCodeHookFailed  = "E009" // An init or fini hook failed
)

// LoadResult is a compiled manifest and where it came from.
type LoadResult struct {
	Manifest  *ir.Manifest
	Path      string
	FileCount int // Number of CUE files read
}

// LoadError is a manifest loading error with an optional CUE position.
type LoadError struct {
	Code    string
	Message string
	Pos     token.Pos
}

func (e *LoadError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s", e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(), e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// LoadManifest compiles the manifest at path. A file is compiled on its
// own; a directory is loaded as one CUE package, so a manifest may be
// split across files.
func LoadManifest(path string) (*LoadResult, error) {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("manifest not found: %s", path)}
	}
	if err != nil {
		return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("error accessing manifest: %v", err)}
	}

	if !info.IsDir() {
		src, err := os.ReadFile(path)
		if err != nil {
			return nil, &LoadError{Code: ErrCodeLoadFailed, Message: fmt.Sprintf("reading manifest: %v", err)}
		}
		m, err := compiler.CompileSource(path, src)
		if err != nil {
			return nil, convertCompileError(err)
		}
		return &LoadResult{Manifest: m, Path: path, FileCount: 1}, nil
	}

	files, err := FindCUEFiles(path)
	if err != nil {
		return nil, &LoadError{Code: ErrCodeScanError, Message: fmt.Sprintf("error scanning directory: %v", err)}
	}
	if len(files) == 0 {
		return nil, &LoadError{Code: ErrCodeNoFiles, Message: fmt.Sprintf("no CUE files found in %s", path)}
	}

	instances := load.Instances([]string{"."}, &load.Config{Dir: path})
	if len(instances) == 0 {
		return nil, &LoadError{Code: ErrCodeLoadFailed, Message: "no CUE instances loaded"}
	}
	inst := instances[0]
	if inst.Err != nil {
		return nil, &LoadError{Code: ErrCodeLoadFailed, Message: fmt.Sprintf("loading CUE files: %v", inst.Err)}
	}

	value := cuecontext.New().BuildInstance(inst)
	m, err := compiler.CompileManifest(value)
	if err != nil {
		return nil, convertCompileError(err)
	}
	return &LoadResult{Manifest: m, Path: path, FileCount: len(files)}, nil
}

// FindCUEFiles returns the .cue files directly inside dir. Subdirectories
// are separate CUE packages and are not part of the manifest.
func FindCUEFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var files []string
	for _, e := range entries {
		if !e.IsDir() && filepath.Ext(e.Name()) == ".cue" {
			files = append(files, filepath.Join(dir, e.Name()))
		}
	}
	return files, nil
}

func convertCompileError(err error) *LoadError {
	var compileErr *compiler.CompileError
	if errors.As(err, &compileErr) {
		return &LoadError{
			Code:    ErrCodeBuildFailed,
			Message: fmt.Sprintf("%s: %s", compileErr.Field, compileErr.Message),
			Pos:     compileErr.Pos,
		}
	}
	return &LoadError{Code: ErrCodeBuildFailed, Message: err.Error()}
}

// loadOrExit loads a manifest and reports load failures through the
// formatter as command errors.
func loadOrExit(f *OutputFormatter, path string) (*LoadResult, error) {
	res, err := LoadManifest(path)
	if err != nil {
		code, msg := ErrCodeGeneric, err.Error()
		var loadErr *LoadError
		if errors.As(err, &loadErr) {
			code, msg = loadErr.Code, loadErr.Error()
		}
		_ = f.Error(code, msg, nil)
		return nil, WrapExitError(ExitCommandError, "failed to load manifest", err)
	}
	f.VerboseLog("Loaded %d module(s) from %d CUE file(s) in %s", len(res.Manifest.Modules), res.FileCount, path)
	return res, nil
}
