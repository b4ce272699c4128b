package testutil

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

type recordingT struct {
	msg string
}

func (r *recordingT) Fatalf(format string, args ...any) { r.msg = fmt.Sprintf(format, args...) }

func TestPredicates(t *testing.T) {
	cases := []struct {
		name string
		pred func(string) bool
		in   string
		want bool
	}{
		{"domain", DomainImportForbidden, "aquacore/pkg/domain", true},
		{"domain versioned", DomainImportForbidden, "example.com/mod/pkg/domain@v1", true},
		{"domain lookalike", DomainImportForbidden, "aquacore/pkg/domainx", false},
		{"internal", InternalImportForbidden, "aquacore/internal/core", true},
		{"internal top", InternalImportForbidden, "aquacore/pkg/domain", false},
		{"third party", ThirdPartyImport, "github.com/sirupsen/logrus", true},
		{"stdlib", ThirdPartyImport, "encoding/json", false},
		{"vendored stdlib", ThirdPartyImport, "vendor/golang.org/x/net/dns", false},
		{"module", ModulePackages("aquacore/internal"), "aquacore/internal/blob", true},
		{"module root", ModulePackages("aquacore/internal"), "aquacore/internal", true},
		{"std internal", ModulePackages("aquacore/internal"), "crypto/internal/boring", false},
		{"module prefix only", ModulePackages("aquacore/internal"), "aquacore/internalx", false},
	}
	for _, c := range cases {
		if got := c.pred(c.in); got != c.want {
			t.Errorf("%s: pred(%q)=%v want %v", c.name, c.in, got, c.want)
		}
	}
}

func writeFile(t *testing.T, dir, name, src string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(src), 0o600); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
}

func TestDirectImportViolations(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.go", "package tmp\nimport (\n\t\"fmt\"\n\t\"github.com/sirupsen/logrus\"\n)\nvar _ = fmt.Sprint\nvar _ = logrus.New\n")
	writeFile(t, dir, "a_test.go", "package tmp\nimport \"gopkg.in/yaml.v3\"\nvar _ = yaml.Marshal\n")
	writeFile(t, dir, "notes.txt", "import \"github.com/x/y\"")
	if err := os.Mkdir(filepath.Join(dir, "sub"), 0o750); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	viols, err := directImportViolations(dir, ThirdPartyImport)
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	if len(viols) != 1 || viols[0] != "github.com/sirupsen/logrus (in a.go)" {
		t.Fatalf("unexpected violations %v", viols)
	}

	rec := &recordingT{}
	failIf(rec, "forbidden direct imports", "stdlib only", viols)
	if !strings.Contains(rec.msg, "stdlib only") || !strings.Contains(rec.msg, "logrus") {
		t.Fatalf("unexpected failure message %q", rec.msg)
	}
	AssertNoDirectImports(t, dir, DomainImportForbidden, "no domain imports")

	writeFile(t, dir, "broken.go", "package tmp\nimport (")
	if _, err := directImportViolations(dir, ThirdPartyImport); err == nil {
		t.Fatalf("expected parse error")
	}
	if _, err := directImportViolations(filepath.Join(dir, "missing"), ThirdPartyImport); err == nil {
		t.Fatalf("expected read error")
	}
}

func TestTransitiveDependencyViolations(t *testing.T) {
	orig := goListDeps
	t.Cleanup(func() { goListDeps = orig })

	goListDeps = func(string) ([]byte, error) {
		return []byte("fmt\n\naquacore/pkg/domain\naquacore/internal/core\n"), nil
	}
	viols, _, err := transitiveDependencyViolations("./...", ModulePackages("aquacore/internal"))
	if err != nil || len(viols) != 1 || viols[0] != "aquacore/internal/core" {
		t.Fatalf("unexpected result %v %v", viols, err)
	}

	goListDeps = func(string) ([]byte, error) { return []byte("no go.mod"), errors.New("exit 1") }
	if _, out, err := transitiveDependencyViolations(".", ThirdPartyImport); err == nil || string(out) != "no go.mod" {
		t.Fatalf("expected go list error with output, got %v %q", err, out)
	}
}
