package cli

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/automata/pkg/domain"
)

func TestDefinitionFlags_FromFlags(t *testing.T) {
	var f DefinitionFlags
	cmd := &cobra.Command{Use: "test", RunE: func(*cobra.Command, []string) error { return nil }}
	f.Bind(cmd)
	cmd.SetArgs([]string{
		"--states", "q0,q1",
		"--alphabet", "a,b",
		"--stack-alphabet", "A",
		"-r", "q0,a,Z->q0,AZ",
		"--rule", "q0,b,A->q1,ε",
		"--initial", "q0",
		"--finals", "q1",
	})
	require.NoError(t, cmd.Execute())

	doc, err := f.Load()
	require.NoError(t, err)
	assert.Equal(t, domain.Definition{
		States:        "q0,q1",
		Alphabet:      "a,b",
		StackAlphabet: "A",
		Transitions:   "q0,a,Z->q0,AZ\nq0,b,A->q1,ε",
		InitialState:  "q0",
		FinalStates:   "q1",
	}, doc.Definition)
}

func TestDefinitionFlags_FileWithOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "parity.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`kind: fsa
states: [even, odd]
alphabet: [0, 1]
transitions:
  - even,0->even
  - even,1->odd
  - odd,0->odd
  - odd,1->even
initial_state: even
final_states: even
inputs: ["", "11"]
`), 0o644))

	f := DefinitionFlags{File: path, Finals: "odd"}
	doc, err := f.Load()
	require.NoError(t, err)
	assert.Equal(t, domain.KindFSA, doc.Kind)
	assert.Equal(t, "even,odd", doc.States)
	assert.Equal(t, "0,1", doc.Alphabet)
	assert.Equal(t, "odd", doc.FinalStates)
	assert.Equal(t, []string{"", "11"}, doc.Inputs)

	f = DefinitionFlags{File: filepath.Join(t.TempDir(), "missing.yaml")}
	_, err = f.Load()
	assert.Error(t, err)
}

func TestDefinitionFlags_Strict(t *testing.T) {
	path := filepath.Join(t.TempDir(), "typo.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"states": "q0", "finals": "q0"}`), 0o644))

	_, err := (&DefinitionFlags{File: path}).Load()
	require.NoError(t, err)

	_, err = (&DefinitionFlags{File: path, Strict: true}).Load()
	assert.Error(t, err)
}

func TestSignalContext_CancelledByParent(t *testing.T) {
	parent, cancel := context.WithCancel(context.Background())
	sc := NewSignalContext(parent)
	cancel()

	<-sc.Done()
	assert.Nil(t, sc.Signal())
	assert.True(t, IsInterrupted(sc.Err()))
	assert.True(t, IsInterrupted(fmt.Errorf("run interrupted: %w", sc.Err())))
	assert.False(t, IsInterrupted(domain.ErrStepLimitExceeded))
}

func TestPrintSystemMessage(t *testing.T) {
	var buf bytes.Buffer
	PrintSystemMessage(&buf, "listening on %s", ":8080")
	assert.Equal(t, ">>> listening on :8080\n", buf.String())
	assert.False(t, IsTerminal(&buf))
}
