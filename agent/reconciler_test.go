package agent

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/erikmagkekse/nfs-manager/nfs"
	"github.com/erikmagkekse/nfs-manager/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeExports(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "exports")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestReconcile(t *testing.T) {
	const content = "# Name: a\n/srv/a 10.0.0.1(rw)\n/srv/b *(ro)\n"

	t.Run("all active", func(t *testing.T) {
		m := &utils.MockRunner{Out: "/srv/a\t10.0.0.1(rw)\n/srv/b\t<world>(ro)\n"}
		r := &Reconciler{File: writeExports(t, content), Exporter: nfs.NewKernelExporter("exportfs", m)}

		assert.Equal(t, 0, r.reconcile(context.Background()))
		assert.Equal(t, []string{"exportfs -v"}, m.Commands())
	})

	t.Run("missing triggers refresh", func(t *testing.T) {
		m := &utils.MockRunner{Out: "/srv/a\t10.0.0.1(rw)\n"}
		r := &Reconciler{File: writeExports(t, content), Exporter: nfs.NewKernelExporter("exportfs", m)}

		assert.Equal(t, 1, r.reconcile(context.Background()))
		assert.Equal(t, []string{"exportfs -v", "exportfs -a"}, m.Commands())
	})

	t.Run("refresh failure", func(t *testing.T) {
		m := &utils.MockRunner{
			RunFn: func(_ string, args []string) (string, error) {
				if args[0] == "-a" {
					return "", errors.New("exportfs failed")
				}
				return "", nil
			},
		}
		r := &Reconciler{File: writeExports(t, content), Exporter: nfs.NewKernelExporter("exportfs", m)}

		assert.Equal(t, 2, r.reconcile(context.Background()))
		assert.Len(t, m.Calls, 2)
	})

	t.Run("unreadable file", func(t *testing.T) {
		m := &utils.MockRunner{}
		r := &Reconciler{File: filepath.Join(t.TempDir(), "missing"), Exporter: nfs.NewKernelExporter("exportfs", m)}

		assert.Equal(t, 0, r.reconcile(context.Background()))
		assert.Empty(t, m.Calls)
	})

	t.Run("list failure", func(t *testing.T) {
		m := &utils.MockRunner{Err: errors.New("exportfs failed")}
		r := &Reconciler{File: writeExports(t, content), Exporter: nfs.NewKernelExporter("exportfs", m)}

		assert.Equal(t, 0, r.reconcile(context.Background()))
		assert.Len(t, m.Calls, 1)
	})
}
