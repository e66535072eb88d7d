package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/martin/tailorproof/internal/index"
	"github.com/martin/tailorproof/internal/trace"
	"github.com/martin/tailorproof/internal/types"
)

const testJobText = "We need deep python experience and aws infrastructure skills. " +
	"Our python services run on aws. Leadership matters: we want someone who has managed a team."

const testProfileJSON = `{
	"identity": {"name": "Jordan Reyes"},
	"experience": [{
		"company": "Acme Corp",
		"title": "Software Engineer",
		"bullets": [
			{"text": "Led Python migration onto AWS infrastructure", "source_ids": ["resumeA"]},
			{"text": "Managed a team of five engineers", "source_ids": ["resumeA"]},
			{"text": "Organized the company picnic", "source_ids": ["resumeA"]}
		]
	}]
}`

// resetRunFlags restores the run command's package flag state after a test
// and detaches the run from any database or credentials in the host
// environment.
func resetRunFlags(t *testing.T) {
	t.Helper()
	t.Setenv("DATABASE_URL", "")
	t.Setenv("TAILORPROOF_DATABASE_URL", "")
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("ANTHROPIC_API_KEY", "")
	t.Cleanup(func() {
		runConfigPath, runJob, runJobTitle, runJobCompany = "", "", "", ""
		runProfile, runOut, runLetterOut = "", "", ""
		runTraceOut = "trace.json"
		runCompact, runRewrite, runCoverLetter, runVerbose = false, false, false, false
		runNotes, runName, runProvider, runAPIKey, runDatabaseURL = "", "", "", "", ""
		runSaveIndex, runLoadIndex = "", ""
	})
}

func writeInputFiles(t *testing.T) (jobPath, profilePath string) {
	t.Helper()
	dir := t.TempDir()
	jobPath = filepath.Join(dir, "job.txt")
	profilePath = filepath.Join(dir, "profile.json")
	require.NoError(t, os.WriteFile(jobPath, []byte(testJobText), 0644))
	require.NoError(t, os.WriteFile(profilePath, []byte(testProfileJSON), 0644))
	return jobPath, profilePath
}

func TestRunCommand_RequiresJobAndProfile(t *testing.T) {
	resetRunFlags(t)

	runJob, runProfile = "", ""
	err := runPipelineCmd(runCommand, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--job is required")

	runJob = "job.txt"
	err = runPipelineCmd(runCommand, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--profile is required")
}

func TestRunCommand_EndToEnd(t *testing.T) {
	resetRunFlags(t)

	jobPath, profilePath := writeInputFiles(t)
	dir := t.TempDir()

	runJob = jobPath
	runProfile = profilePath
	runJobTitle = "Platform Engineer"
	runJobCompany = "Initech"
	runOut = filepath.Join(dir, "resume.txt")
	runTraceOut = filepath.Join(dir, "trace.json")
	runSaveIndex = filepath.Join(dir, "index.json")

	require.NoError(t, runPipelineCmd(runCommand, nil))

	doc, err := os.ReadFile(runOut)
	require.NoError(t, err)
	assert.Contains(t, string(doc), "Led Python migration")

	tr, err := trace.Read(runTraceOut)
	require.NoError(t, err)
	require.NoError(t, trace.Verify(tr))
	assert.Equal(t, "Platform Engineer", tr.JobTitle)
	assert.Equal(t, "Initech", tr.JobCompany)
	assert.NotEmpty(t, tr.Entries)

	snapshot, err := os.ReadFile(runSaveIndex)
	require.NoError(t, err)
	restored, err := index.Load(snapshot, nil)
	require.NoError(t, err)
	assert.Equal(t, index.BackendLexical, restored.Name())
}

func TestRunCommand_LoadsIndexSnapshot(t *testing.T) {
	resetRunFlags(t)

	jobPath, profilePath := writeInputFiles(t)
	dir := t.TempDir()
	snapshotPath := filepath.Join(dir, "index.json")

	runJob = jobPath
	runProfile = profilePath
	runOut = filepath.Join(dir, "first.txt")
	runTraceOut = filepath.Join(dir, "first-trace.json")
	runSaveIndex = snapshotPath
	require.NoError(t, runPipelineCmd(runCommand, nil))

	first, err := os.ReadFile(runOut)
	require.NoError(t, err)

	runOut = filepath.Join(dir, "second.txt")
	runTraceOut = filepath.Join(dir, "second-trace.json")
	runSaveIndex = ""
	runLoadIndex = snapshotPath
	require.NoError(t, runPipelineCmd(runCommand, nil))

	second, err := os.ReadFile(runOut)
	require.NoError(t, err)
	assert.Equal(t, string(first), string(second), "a run from a snapshot must reproduce the document")
}

func TestIndexCommand(t *testing.T) {
	_, profilePath := writeInputFiles(t)
	dir := t.TempDir()
	outPath := filepath.Join(dir, "index.json")

	indexProfile = profilePath
	indexOut = outPath
	indexQuery = "python aws"
	t.Cleanup(func() {
		indexConfigPath, indexProfile, indexBackend, indexAPIKey, indexQuery = "", "", "", "", ""
		indexOut = "index.json"
		indexTopN = 5
	})

	require.NoError(t, runIndexCmd(indexCommand, nil))

	snapshot, err := os.ReadFile(outPath)
	require.NoError(t, err)
	restored, err := index.Load(snapshot, nil)
	require.NoError(t, err)
	assert.Equal(t, index.BackendLexical, restored.Name())
}

func TestEvaluateCommand_FlagExclusivity(t *testing.T) {
	dir := t.TempDir()
	docPath := filepath.Join(dir, "resume.txt")
	require.NoError(t, os.WriteFile(docPath, []byte("python aws"), 0644))
	t.Cleanup(func() { evalConfigPath, evalDocument, evalTrace, evalJob = "", "", "", "" })

	evalDocument = ""
	err := runEvaluateCmd(evaluateCommand, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--document is required")

	evalDocument = docPath
	evalTrace, evalJob = "", ""
	err = runEvaluateCmd(evaluateCommand, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "exactly one of --trace or --job")

	evalTrace, evalJob = "trace.json", "job.txt"
	err = runEvaluateCmd(evaluateCommand, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "exactly one of --trace or --job")
}

func TestEvaluateCommand_WithTrace(t *testing.T) {
	dir := t.TempDir()
	docPath := filepath.Join(dir, "resume.txt")
	tracePath := filepath.Join(dir, "trace.json")
	require.NoError(t, os.WriteFile(docPath, []byte("Led Python migration onto AWS infrastructure"), 0644))

	tr := &types.Trace{
		RunID: "run-1",
		Keywords: types.KeywordSet{
			{Term: "python", Weight: 3},
			{Term: "aws", Weight: 2},
			{Term: "leadership", Weight: 1},
		},
		Entries: []types.TraceEntry{
			{ClaimID: "exp-0-b0", Text: "Led Python migration onto AWS infrastructure", SourceIDs: []string{"resumeA"}},
		},
	}
	require.NoError(t, trace.Write(tracePath, tr))

	evalDocument = docPath
	evalTrace = tracePath
	t.Cleanup(func() { evalConfigPath, evalDocument, evalTrace, evalJob = "", "", "", "" })

	require.NoError(t, runEvaluateCmd(evaluateCommand, nil))
}

func TestEvaluateCommand_RejectsTamperedTrace(t *testing.T) {
	dir := t.TempDir()
	docPath := filepath.Join(dir, "resume.txt")
	tracePath := filepath.Join(dir, "trace.json")
	require.NoError(t, os.WriteFile(docPath, []byte("python"), 0644))

	// An entry stripped of its sources must fail verification.
	tr := &types.Trace{
		RunID:    "run-1",
		Keywords: types.KeywordSet{{Term: "python", Weight: 1}},
		Entries:  []types.TraceEntry{{ClaimID: "exp-0-b0", Text: "something"}},
	}
	require.NoError(t, trace.Write(tracePath, tr))

	evalDocument = docPath
	evalTrace = tracePath
	t.Cleanup(func() { evalConfigPath, evalDocument, evalTrace, evalJob = "", "", "", "" })

	err := runEvaluateCmd(evaluateCommand, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed verification")
}

func TestResolveAPIKey(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "gemini-env-key")
	t.Setenv("ANTHROPIC_API_KEY", "anthropic-env-key")

	assert.Equal(t, "flag-key", resolveAPIKey("gemini", "flag-key"))
	assert.Equal(t, "gemini-env-key", resolveAPIKey("gemini", ""))
	assert.Equal(t, "anthropic-env-key", resolveAPIKey("anthropic", ""))

	t.Setenv("GEMINI_API_KEY", "")
	assert.Empty(t, resolveAPIKey("gemini", ""))
}

func TestFlagDefaults(t *testing.T) {
	// The reset helpers hardcode these; keep them in sync with the flags.
	assert.Equal(t, "trace.json", runCommand.Flags().Lookup("trace").DefValue)
	assert.Equal(t, "index.json", indexCommand.Flags().Lookup("out").DefValue)
}
