package textract

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	awstextract "github.com/aws/aws-sdk-go-v2/service/textract"
	"github.com/aws/aws-sdk-go-v2/service/textract/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gardar/blockgraph/pkg/blocks"
)

type fakeAPI struct {
	input *awstextract.AnalyzeDocumentInput
	out   *awstextract.AnalyzeDocumentOutput
	err   error
}

func (f *fakeAPI) AnalyzeDocument(_ context.Context, in *awstextract.AnalyzeDocumentInput, _ ...func(*awstextract.Options)) (*awstextract.AnalyzeDocumentOutput, error) {
	f.input = in
	return f.out, f.err
}

func sdkDoc() []types.Block {
	return []types.Block{
		{
			Id:          aws.String("k1"),
			BlockType:   types.BlockTypeKeyValueSet,
			EntityTypes: []types.EntityType{types.EntityTypeKey},
			Relationships: []types.Relationship{
				{Type: types.RelationshipTypeChild, Ids: []string{"w1"}},
				{Type: types.RelationshipTypeValue, Ids: []string{"v1"}},
			},
		},
		{
			Id:            aws.String("v1"),
			BlockType:     types.BlockTypeKeyValueSet,
			EntityTypes:   []types.EntityType{types.EntityTypeValue},
			Relationships: []types.Relationship{{Type: types.RelationshipTypeChild, Ids: []string{"w2"}}},
		},
		{
			Id:         aws.String("w1"),
			BlockType:  types.BlockTypeWord,
			Text:       aws.String("Total:"),
			Page:       aws.Int32(2),
			Confidence: aws.Float32(98.5),
			Geometry: &types.Geometry{
				BoundingBox: &types.BoundingBox{Left: 0.125, Top: 0.25, Width: 0.25, Height: 0.125},
				Polygon:     []types.Point{{X: 0.125, Y: 0.25}},
			},
		},
		{
			Id:        aws.String("w2"),
			BlockType: types.BlockTypeWord,
			Text:      aws.String("42.00"),
		},
		{
			Id:          aws.String("c1"),
			BlockType:   types.BlockTypeCell,
			RowIndex:    aws.Int32(1),
			ColumnIndex: aws.Int32(2),
			RowSpan:     aws.Int32(1),
			ColumnSpan:  aws.Int32(3),
		},
		{
			Id:              aws.String("s1"),
			BlockType:       types.BlockTypeSelectionElement,
			SelectionStatus: types.SelectionStatusSelected,
		},
	}
}

func TestBlocksFromSDK(t *testing.T) {
	got := BlocksFromSDK(sdkDoc())
	require.Len(t, got, 6)

	word := got[2]
	assert.Equal(t, "w1", word.ID)
	assert.Equal(t, blocks.BlockTypeWord, word.BlockType)
	assert.Equal(t, 2, word.Page)
	assert.InDelta(t, 98.5, word.Confidence, 1e-6)
	require.NotNil(t, word.Geometry)
	assert.Equal(t, &blocks.BoundingBox{Left: 0.125, Top: 0.25, Width: 0.25, Height: 0.125}, word.Geometry.BoundingBox)
	assert.Equal(t, []blocks.Point{{X: 0.125, Y: 0.25}}, word.Geometry.Polygon)

	assert.Nil(t, got[3].Geometry)
	assert.Equal(t, [4]int{1, 2, 1, 3}, [4]int{got[4].RowIndex, got[4].ColumnIndex, got[4].RowSpan, got[4].ColumnSpan})
	assert.Equal(t, blocks.Selected, got[5].SelectionStatus)

	idx := blocks.NewIndex(got)
	assert.Equal(t, map[string]string{"Total:": "42.00"}, idx.KeyValues())
}

func TestBlocksFromSDKEmpty(t *testing.T) {
	assert.Nil(t, BlocksFromSDK(nil))
}

func TestAnalyze(t *testing.T) {
	api := &fakeAPI{out: &awstextract.AnalyzeDocumentOutput{Blocks: sdkDoc()}}

	got, err := Analyze(context.Background(), api, []byte("png"))
	require.NoError(t, err)
	assert.Len(t, got, 6)

	require.NotNil(t, api.input)
	assert.Equal(t, []byte("png"), api.input.Document.Bytes)
	assert.ElementsMatch(t, []types.FeatureType{types.FeatureTypeForms, types.FeatureTypeTables}, api.input.FeatureTypes)
}

func TestAnalyzeErrors(t *testing.T) {
	_, err := Analyze(context.Background(), &fakeAPI{}, nil)
	assert.True(t, errors.Is(err, blocks.ErrMalformedInput))

	boom := errors.New("throttled")
	_, err = Analyze(context.Background(), &fakeAPI{err: boom}, []byte("png"))
	assert.ErrorIs(t, err, boom)

	_, err = Analyze(context.Background(), &fakeAPI{out: &awstextract.AnalyzeDocumentOutput{}}, []byte("png"))
	assert.True(t, errors.Is(err, blocks.ErrMalformedInput))
}
