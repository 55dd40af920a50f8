package cli

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/octave/internal/schema"
	"github.com/roach88/octave/internal/store"
	"github.com/roach88/octave/internal/tools"
)

// Error codes for command-level failures. Document problems use the
// E/W codes from the diag package.
const (
	ErrCodeGeneric         = "ERROR"
	ErrCodeNotFound        = "NOT_FOUND"
	ErrCodeHashMismatch    = "HASH_MISMATCH"
	ErrCodePathNotAllowed  = "PATH_NOT_ALLOWED"
	ErrCodeUnknownSchema   = "UNKNOWN_SCHEMA"
	ErrCodeNoStore         = "NO_STORE"
	ErrCodeInvalidDocument = "INVALID_DOCUMENT"
	ErrCodeInvalidArgument = "INVALID_ARGUMENT"
)

// session is the service a command runs against plus the resources it
// owns.
type session struct {
	svc   *tools.Service
	repo  *schema.Repository
	store *store.Store
}

// openSession builds a service from the loaded configuration: schema
// directories are loaded into a fresh repository and, when withStore is
// set and store.path is configured, the revision ledger is opened.
func (o *RootOptions) openSession(withStore bool, extra ...tools.Option) (*session, error) {
	cfg := o.settings()
	log := o.logger()

	repo := schema.NewRepository()
	for _, dir := range cfg.Schemas.Dirs {
		n, errs := repo.LoadDir(dir)
		for _, err := range errs {
			log.Warn("schema not loaded", "dir", dir, "error", err)
		}
		log.Debug("schemas loaded", "dir", dir, "count", n)
	}

	opts := []tools.Option{
		tools.WithLogger(log),
		tools.WithAllowedExtensions(cfg.Create.AllowedExtensions),
	}
	sess := &session{repo: repo}
	if withStore && cfg.Store.Path != "" {
		st, err := store.Open(cfg.Store.Path)
		if err != nil {
			return nil, WrapExitError(ExitCommandError, "failed to open revision store", err)
		}
		sess.store = st
		opts = append(opts, tools.WithStore(st))
	}
	sess.svc = tools.New(repo, append(opts, extra...)...)
	return sess, nil
}

func (s *session) Close() error {
	if s.store == nil {
		return nil
	}
	return s.store.Close()
}

// readContent reads a file argument, or stdin for "-".
func readContent(cmd *cobra.Command, arg string) (string, error) {
	if arg == "-" {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return "", fmt.Errorf("failed to read stdin: %w", err)
		}
		return string(data), nil
	}
	data, err := os.ReadFile(arg)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// parseAssignments turns KEY=VALUE flag values into a map.
func parseAssignments(pairs []string) (map[string]string, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	out := make(map[string]string, len(pairs))
	for _, p := range pairs {
		key, value, ok := strings.Cut(p, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid assignment %q: want KEY=VALUE", p)
		}
		out[key] = value
	}
	return out, nil
}

// boolSetting returns the flag value when the flag was given, otherwise
// the configured default.
func boolSetting(cmd *cobra.Command, name string, flagValue, configured bool) bool {
	if cmd.Flags().Changed(name) {
		return flagValue
	}
	return configured
}

// reportError writes err through the formatter and returns the matching
// ExitError. Fatal document errors keep their E-code.
func reportError(f *OutputFormatter, err error) error {
	code, exit := classify(err)
	message := err.Error()
	var details any
	if d, ok := tools.Diagnostic(err); ok {
		code, exit = d.Code, ExitFailure
		message = d.Message
		if d.Path != "" {
			details = map[string]string{"path": d.Path}
		}
	}
	_ = f.Error(code, message, details)
	return WrapExitError(exit, code, err)
}

// argumentError reports a bad flag or argument value.
func argumentError(f *OutputFormatter, err error) error {
	_ = f.Error(ErrCodeInvalidArgument, err.Error(), nil)
	return WrapExitError(ExitCommandError, ErrCodeInvalidArgument, err)
}

func classify(err error) (string, int) {
	switch {
	case errors.Is(err, tools.ErrHashMismatch):
		return ErrCodeHashMismatch, ExitFailure
	case errors.Is(err, tools.ErrInvalidDocument):
		return ErrCodeInvalidDocument, ExitFailure
	case errors.Is(err, tools.ErrPathNotAllowed):
		return ErrCodePathNotAllowed, ExitCommandError
	case errors.Is(err, tools.ErrUnknownSchema):
		return ErrCodeUnknownSchema, ExitCommandError
	case errors.Is(err, tools.ErrNoStore):
		return ErrCodeNoStore, ExitCommandError
	case errors.Is(err, fs.ErrNotExist):
		return ErrCodeNotFound, ExitCommandError
	}
	return ErrCodeGeneric, ExitCommandError
}

func newFormatter(opts *RootOptions, cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(), // Verbose logs go to stderr to avoid corrupting JSON
		Verbose:   opts.Verbose,
	}
}
