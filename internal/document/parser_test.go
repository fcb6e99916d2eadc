package document

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParse_ProseOnly_SingleProseBlock(t *testing.T) {
	doc, err := Parse([]byte("# Title\n\nHello world.\n"))
	require.NoError(t, err)
	require.Len(t, doc.Blocks, 1)
	require.Equal(t, BlockProse, doc.Blocks[0].Kind)
	require.Contains(t, doc.Blocks[0].Text, "Hello world.")
}

func TestParse_CodeFence_ExtractsLanguageAndBody(t *testing.T) {
	src := "Intro\n\n```stan\nmodel { y ~ normal(a, sigma); }\n```\n\nOutro\n"

	doc, err := Parse([]byte(src))
	require.NoError(t, err)
	require.Len(t, doc.Blocks, 3)

	require.Equal(t, BlockProse, doc.Blocks[0].Kind)
	require.Equal(t, BlockCode, doc.Blocks[1].Kind)
	require.Equal(t, "stan", doc.Blocks[1].Lang)
	require.Equal(t, "model { y ~ normal(a, sigma); }", doc.Blocks[1].Text)
	require.False(t, doc.Blocks[1].Eval)
	require.Equal(t, BlockProse, doc.Blocks[2].Kind)
}

func TestParse_BracedInfoString_ParsesAttributes(t *testing.T) {
	src := "```{python fit, eval=true}\nprint(1)\n```\n"

	doc, err := Parse([]byte(src))
	require.NoError(t, err)
	require.Len(t, doc.Blocks, 1)

	b := doc.Blocks[0]
	require.Equal(t, BlockCode, b.Kind)
	require.Equal(t, "python", b.Lang)
	require.Equal(t, "fit", b.Name)
	require.True(t, b.Eval)
}

func TestParse_FileAttribute_BecomesIncludeDirective(t *testing.T) {
	src := "```{stan file=\"models/linreg.stan\"}\n```\n"

	doc, err := Parse([]byte(src))
	require.NoError(t, err)
	require.Len(t, doc.Blocks, 1)

	b := doc.Blocks[0]
	require.Equal(t, BlockInclude, b.Kind)
	require.Equal(t, "models/linreg.stan", b.IncludePath)
	require.Equal(t, "stan", b.Lang)
}

func TestParse_UnterminatedFence_ReturnsUnterminatedBlock(t *testing.T) {
	src := "Hello\n\n```stan\nmodel {}\n"

	doc, err := Parse([]byte(src))
	require.Nil(t, doc)
	require.Error(t, err)
	require.True(t, IsParseKind(err, KindUnterminatedBlock))

	var pe *ParseError
	require.ErrorAs(t, err, &pe)
	require.Equal(t, 3, pe.Line)
}

func TestParse_IncludeWithBody_ReturnsMalformedDirective(t *testing.T) {
	src := "```{stan file=\"m.stan\"}\nmodel {}\n```\n"

	_, err := Parse([]byte(src))
	require.Error(t, err)
	require.True(t, IsParseKind(err, KindMalformedDirective))
}

func TestParse_IncludeWithEval_ReturnsMalformedDirective(t *testing.T) {
	src := "```{stan file=\"m.stan\", eval=true}\n```\n"

	_, err := Parse([]byte(src))
	require.Error(t, err)
	require.True(t, IsParseKind(err, KindMalformedDirective))
}

func TestParse_AbsoluteIncludePath_ReturnsMalformedDirective(t *testing.T) {
	src := "```{stan file=\"/etc/passwd\"}\n```\n"

	_, err := Parse([]byte(src))
	require.Error(t, err)
	require.True(t, IsParseKind(err, KindMalformedDirective))
}

func TestParse_EmptyIncludePath_ReturnsMalformedDirective(t *testing.T) {
	src := "```{stan file=\"\"}\n```\n"

	_, err := Parse([]byte(src))
	require.Error(t, err)
	require.True(t, IsParseKind(err, KindMalformedDirective))
}

func TestParse_Frontmatter_PopulatesMetaAndAdjustsLines(t *testing.T) {
	src := "---\ntitle: Bayes Chapter\ndigits: 3\n---\nProse\n\n```stan\nmodel {}\n```\n"

	doc, err := Parse([]byte(src))
	require.NoError(t, err)
	require.Equal(t, "Bayes Chapter", doc.Meta["title"])
	require.Equal(t, 3, doc.Meta["digits"])

	// The chunk opens on source line 7 (frontmatter spans lines 1-4).
	require.Len(t, doc.Blocks, 2)
	require.Equal(t, 7, doc.Blocks[1].Line)
}

func TestParse_UnterminatedFrontmatter_ReturnsUnterminatedBlock(t *testing.T) {
	src := "---\ntitle: whoops\n# Not closed\n"

	_, err := Parse([]byte(src))
	require.Error(t, err)
	require.True(t, IsParseKind(err, KindUnterminatedBlock))
}

func TestParse_ChunkOrdinals_CountNonProseBlocksOnly(t *testing.T) {
	src := "A\n\n```r\n1\n```\nB\n\n```{stan file=\"m.stan\"}\n```\nC\n"

	doc, err := Parse([]byte(src))
	require.NoError(t, err)

	chunks := doc.Chunks()
	require.Len(t, chunks, 2)
	require.Equal(t, 1, chunks[0].Ordinal)
	require.Equal(t, 2, chunks[1].Ordinal)
}

func TestParse_BlockOrder_PreservedFromSource(t *testing.T) {
	first := "First paragraph.\n\n```r\n1\n```\n\nSecond paragraph.\n"
	swapped := "Second paragraph.\n\n```r\n1\n```\n\nFirst paragraph.\n"

	a, err := Parse([]byte(first))
	require.NoError(t, err)
	b, err := Parse([]byte(swapped))
	require.NoError(t, err)

	require.Contains(t, a.Blocks[0].Text, "First")
	require.Contains(t, a.Blocks[2].Text, "Second")
	require.Contains(t, b.Blocks[0].Text, "Second")
	require.Contains(t, b.Blocks[2].Text, "First")
}

func TestParse_CRLFSource_HandlesFencesAndFrontmatter(t *testing.T) {
	src := "---\r\ntitle: CRLF\r\n---\r\nProse\r\n```stan\r\nmodel {}\r\n```\r\n"

	doc, err := Parse([]byte(src))
	require.NoError(t, err)
	require.Equal(t, "CRLF", doc.Meta["title"])
	require.Len(t, doc.Blocks, 2)
	require.Equal(t, "model {}", doc.Blocks[1].Text)
}
