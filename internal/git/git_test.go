package git

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleDiff = `diff --git a/src/lib.rs b/src/lib.rs
index 1111111..2222222 100644
--- a/src/lib.rs
+++ b/src/lib.rs
@@ -3 +3 @@ fn noop() {}
-fn add(a: i32) -> i32 { a }
+fn add(a: i64) -> i64 { a }
@@ -10,0 +11,2 @@
+#[dotnet_bindgen]
+fn extra() {}
diff --git a/README.md b/README.md
index 3333333..4444444 100644
--- a/README.md
+++ b/README.md
@@ -1,2 +0,0 @@
-old
-text
`

func TestParseDiff(t *testing.T) {
	files, err := parseDiff([]byte(sampleDiff))
	require.NoError(t, err)
	require.Len(t, files, 2)

	assert.Equal(t, "src/lib.rs", files[0].Path)
	assert.Equal(t, []int{3, 11, 12}, files[0].ChangedLines)

	assert.Equal(t, "README.md", files[1].Path)
	assert.Empty(t, files[1].ChangedLines)
}

func TestParseDiff_Empty(t *testing.T) {
	files, err := parseDiff(nil)
	require.NoError(t, err)
	assert.Empty(t, files)
}

func TestFilterExt(t *testing.T) {
	files := []ChangedFile{{Path: "src/lib.rs"}, {Path: "README.md"}, {Path: "src/MOD.RS"}}
	got := FilterExt(files, ".rs")
	require.Len(t, got, 2)
	assert.Equal(t, "src/lib.rs", got[0].Path)
	assert.Equal(t, "src/MOD.RS", got[1].Path)
}
