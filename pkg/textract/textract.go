// Package textract calls Amazon Textract and converts its SDK blocks into
// the blocks package's model.
//
// AnalyzeDocument requests FORMS and TABLES analysis so the response carries
// KEY_VALUE_SET, TABLE and CELL blocks alongside words and lines.
// Credentials come from the default AWS chain (environment, shared config, role).
package textract

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	awstextract "github.com/aws/aws-sdk-go-v2/service/textract"
	"github.com/aws/aws-sdk-go-v2/service/textract/types"

	"github.com/gardar/blockgraph/pkg/blocks"
)

// Config selects the Textract endpoint
type Config struct {
	Region string
}

// API is the subset of the Textract client used here
type API interface {
	AnalyzeDocument(ctx context.Context, params *awstextract.AnalyzeDocumentInput, optFns ...func(*awstextract.Options)) (*awstextract.AnalyzeDocumentOutput, error)
}

// NewClient builds a Textract client from the default AWS configuration
func NewClient(ctx context.Context, cfg Config) (*awstextract.Client, error) {
	var opts []func(*awsconfig.LoadOptions) error
	if cfg.Region != "" {
		opts = append(opts, awsconfig.WithRegion(cfg.Region))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}
	return awstextract.NewFromConfig(awsCfg), nil
}

// AnalyzeDocument sends a single-page document (PNG, JPEG, TIFF or PDF) to
// Textract and returns its blocks
func AnalyzeDocument(ctx context.Context, content []byte, cfg Config) ([]blocks.Block, error) {
	client, err := NewClient(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return Analyze(ctx, client, content)
}

// Analyze runs FORMS and TABLES analysis through api
func Analyze(ctx context.Context, api API, content []byte) ([]blocks.Block, error) {
	if len(content) == 0 {
		return nil, fmt.Errorf("%w: empty document", blocks.ErrMalformedInput)
	}
	out, err := api.AnalyzeDocument(ctx, &awstextract.AnalyzeDocumentInput{
		Document:     &types.Document{Bytes: content},
		FeatureTypes: []types.FeatureType{types.FeatureTypeForms, types.FeatureTypeTables},
	})
	if err != nil {
		return nil, fmt.Errorf("textract API call failed: %w", err)
	}

	result := BlocksFromSDK(out.Blocks)
	if len(result) == 0 {
		return nil, fmt.Errorf("%w: textract returned no blocks", blocks.ErrMalformedInput)
	}
	return result, nil
}

// BlocksFromSDK converts SDK blocks into the blocks package's model
func BlocksFromSDK(in []types.Block) []blocks.Block {
	if len(in) == 0 {
		return nil
	}
	out := make([]blocks.Block, 0, len(in))
	for _, b := range in {
		out = append(out, convert(b))
	}
	return out
}

func convert(b types.Block) blocks.Block {
	res := blocks.Block{
		ID:              aws.ToString(b.Id),
		BlockType:       blocks.BlockType(b.BlockType),
		Text:            aws.ToString(b.Text),
		SelectionStatus: blocks.SelectionStatus(b.SelectionStatus),
		RowIndex:        int(aws.ToInt32(b.RowIndex)),
		ColumnIndex:     int(aws.ToInt32(b.ColumnIndex)),
		RowSpan:         int(aws.ToInt32(b.RowSpan)),
		ColumnSpan:      int(aws.ToInt32(b.ColumnSpan)),
		Page:            int(aws.ToInt32(b.Page)),
		Confidence:      float64(aws.ToFloat32(b.Confidence)),
		Geometry:        geometry(b.Geometry),
	}
	for _, et := range b.EntityTypes {
		res.EntityTypes = append(res.EntityTypes, blocks.EntityType(et))
	}
	for _, rel := range b.Relationships {
		res.Relationships = append(res.Relationships, blocks.Relationship{
			Type: blocks.RelationshipType(rel.Type),
			Ids:  rel.Ids,
		})
	}
	return res
}

func geometry(g *types.Geometry) *blocks.Geometry {
	if g == nil {
		return nil
	}
	res := &blocks.Geometry{}
	if bb := g.BoundingBox; bb != nil {
		res.BoundingBox = &blocks.BoundingBox{
			Left:   float64(bb.Left),
			Top:    float64(bb.Top),
			Width:  float64(bb.Width),
			Height: float64(bb.Height),
		}
	}
	for _, p := range g.Polygon {
		res.Polygon = append(res.Polygon, blocks.Point{X: float64(p.X), Y: float64(p.Y)})
	}
	return res
}
