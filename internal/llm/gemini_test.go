package llm

import (
	"testing"

	"github.com/google/generative-ai-go/genai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractTextFromResponse_JoinsParts(t *testing.T) {
	resp := &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{
			{
				Content: &genai.Content{
					Parts: []genai.Part{
						genai.Text("### Culture\n"),
						genai.Text("- Festival opens"),
					},
				},
			},
		},
	}

	text, err := extractTextFromResponse(resp)
	require.NoError(t, err)
	assert.Equal(t, "### Culture\n- Festival opens", text)
}

func TestExtractTextFromResponse_NoCandidates(t *testing.T) {
	_, err := extractTextFromResponse(&genai.GenerateContentResponse{})

	var emptyErr *EmptyResponseError
	assert.ErrorAs(t, err, &emptyErr)
	assert.Contains(t, err.Error(), "no candidates")
}

func TestExtractTextFromResponse_NoContent(t *testing.T) {
	resp := &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{Content: nil}},
	}

	_, err := extractTextFromResponse(resp)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "no content")
}
