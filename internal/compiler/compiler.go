// Package compiler shells out to the Solidity compiler's
// --standard-json interface (spec.md §6), the one deliberate blocking
// subprocess call the core rewrite engine allows (spec.md §5).
// Grounded in the teacher's os/exec idiom (service/browser.go's
// exec.Command + wrapped-error style); obfuscator.py's
// solcx.compile_standard call has no teacher counterpart to adapt, so
// this file is new code written in the teacher's error-handling idiom.
package compiler

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"regexp"
	"strings"

	"github.com/goudunz1/solobfus/internal/ingest"
)

// DefaultSolcPath is used when Options.SolcPath is empty.
const DefaultSolcPath = "solc"

// MinimumVersion is the lowest solc version that does not trigger the
// version-mismatch warning (spec.md §6).
const MinimumVersion = "0.8.28"

// ExternalCompile reports that the Solidity compiler failed or could
// not be run at all (spec.md §7). The run aborts before any pass
// executes.
type ExternalCompile struct {
	Path string
	Err  error
}

func (e *ExternalCompile) Error() string {
	return fmt.Sprintf("external compiler %q failed: %v", e.Path, e.Err)
}

func (e *ExternalCompile) Unwrap() error { return e.Err }

// Options configures one Compile call.
type Options struct {
	// SolcPath is the solc binary to invoke. Defaults to "solc".
	SolcPath string
}

// standardInputDoc mirrors the standard-json request body of spec.md §6.
type standardInputDoc struct {
	Language string                    `json:"language"`
	Sources  map[string]sourceInputDoc `json:"sources"`
	Settings settingsDoc               `json:"settings"`
}

type sourceInputDoc struct {
	URLs []string `json:"urls"`
}

type settingsDoc struct {
	OutputSelection map[string]map[string][]string `json:"outputSelection"`
}

// Compile invokes solc --standard-json on the file at path and returns
// the ingested per-source AST document. It blocks for as long as the
// subprocess takes; cancel ctx to abort early.
func Compile(ctx context.Context, path string, opts Options) (*ingest.Document, error) {
	solcPath := opts.SolcPath
	if solcPath == "" {
		solcPath = DefaultSolcPath
	}

	req := standardInputDoc{
		Language: "Solidity",
		Sources: map[string]sourceInputDoc{
			"temp.sol": {URLs: []string{path}},
		},
		Settings: settingsDoc{
			OutputSelection: map[string]map[string][]string{
				"*": {"": {"ast"}},
			},
		},
	}

	body, err := json.Marshal(req)
	if err != nil {
		return nil, &ExternalCompile{Path: solcPath, Err: fmt.Errorf("encoding request: %w", err)}
	}

	cmd := exec.CommandContext(ctx, solcPath, "--standard-json", "--base-path", ".")
	cmd.Stdin = bytes.NewReader(body)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return nil, &ExternalCompile{Path: solcPath, Err: fmt.Errorf("%w: %s", err, stderr.String())}
	}

	doc, err := ingest.Parse(&stdout)
	if err != nil {
		return nil, &ExternalCompile{Path: solcPath, Err: fmt.Errorf("decoding standard-json output: %w", err)}
	}

	for _, e := range doc.Errors {
		if strings.EqualFold(e.Severity, "error") {
			return nil, &ExternalCompile{Path: solcPath, Err: fmt.Errorf("%s", e.FormattedMessage)}
		}
	}

	return doc, nil
}

var versionPattern = regexp.MustCompile(`\d+\.\d+\.\d+`)

// CheckVersion runs `solc --version` and reports the parsed semver
// along with whether it falls below MinimumVersion. A low version is a
// warning, not a failure: the caller decides whether to continue.
func CheckVersion(ctx context.Context, solcPath string) (semver string, warn bool, err error) {
	if solcPath == "" {
		solcPath = DefaultSolcPath
	}

	cmd := exec.CommandContext(ctx, solcPath, "--version")
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if runErr := cmd.Run(); runErr != nil {
		return "", false, &ExternalCompile{Path: solcPath, Err: fmt.Errorf("%w: %s", runErr, stderr.String())}
	}

	match := versionPattern.FindString(stdout.String())
	if match == "" {
		return "", false, &ExternalCompile{Path: solcPath, Err: fmt.Errorf("could not parse version from: %s", stdout.String())}
	}

	return match, compareSemver(match, MinimumVersion) < 0, nil
}

// compareSemver compares two "X.Y.Z" strings, returning -1, 0, or 1.
func compareSemver(a, b string) int {
	as, bs := strings.Split(a, "."), strings.Split(b, ".")
	for i := 0; i < 3; i++ {
		av, bv := parseSegment(as, i), parseSegment(bs, i)
		if av != bv {
			if av < bv {
				return -1
			}
			return 1
		}
	}
	return 0
}

func parseSegment(parts []string, i int) int {
	if i >= len(parts) {
		return 0
	}
	n := 0
	for _, c := range parts[i] {
		if c < '0' || c > '9' {
			break
		}
		n = n*10 + int(c-'0')
	}
	return n
}
