package users

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/golang/geo/s2"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

// DynamoDBClient is the subset of the DynamoDB API used by DynamoDBSource.
// Declared as an interface so tests can substitute a fake.
type DynamoDBClient interface {
	Scan(ctx context.Context, params *dynamodb.ScanInput, optFns ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error)
}

// DynamoDBOptions configures a DynamoDBSource.
type DynamoDBOptions struct {
	// LatAttribute and LngAttribute are the numeric attributes holding the
	// coordinates in degrees. Defaults: "lat" and "lng".
	LatAttribute string
	LngAttribute string

	// PageLimit caps the item count per Scan page. Zero lets DynamoDB pick.
	PageLimit int32

	// Segments is the number of parallel scan segments. Values above one
	// enable a DynamoDB parallel scan. Default: 1.
	Segments int

	// PagesPerSecond throttles Scan page requests across all segments.
	// Zero disables throttling.
	PagesPerSecond float64
}

// DynamoDBSource streams user records out of a DynamoDB table via paged
// Scan requests, the production-scale counterpart to SliceSource.
//
// The scan starts lazily on the first Next call and runs on background
// goroutines (one per segment); Next surfaces the first scan error after
// draining already-buffered records.
type DynamoDBSource struct {
	client  DynamoDBClient
	table   string
	opts    DynamoDBOptions
	limiter *rate.Limiter

	once sync.Once
	ch   chan User
	g    *errgroup.Group
}

// NewDynamoDBSource creates a Source scanning the given table.
func NewDynamoDBSource(client DynamoDBClient, table string, optFns ...func(*DynamoDBOptions)) *DynamoDBSource {
	opts := DynamoDBOptions{
		LatAttribute: "lat",
		LngAttribute: "lng",
		Segments:     1,
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Segments < 1 {
		opts.Segments = 1
	}

	var limiter *rate.Limiter
	if opts.PagesPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(opts.PagesPerSecond), 1)
	}

	return &DynamoDBSource{
		client:  client,
		table:   table,
		opts:    opts,
		limiter: limiter,
	}
}

// NewDynamoDBSourceFromDefaultConfig creates a DynamoDBSource using the
// default AWS credential/region chain.
func NewDynamoDBSourceFromDefaultConfig(ctx context.Context, table string, optFns ...func(*DynamoDBOptions)) (*DynamoDBSource, error) {
	cfg, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	return NewDynamoDBSource(dynamodb.NewFromConfig(cfg), table, optFns...), nil
}

// Next implements Source.
func (s *DynamoDBSource) Next(ctx context.Context) (User, error) {
	s.once.Do(func() { s.start(ctx) })

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case u, ok := <-s.ch:
		if !ok {
			if err := s.g.Wait(); err != nil {
				return nil, err
			}
			return nil, io.EOF
		}
		return u, nil
	}
}

func (s *DynamoDBSource) start(ctx context.Context) {
	s.ch = make(chan User, 256)

	g, gctx := errgroup.WithContext(ctx)
	s.g = g

	for segment := 0; segment < s.opts.Segments; segment++ {
		g.Go(func() error {
			return s.scanSegment(gctx, segment)
		})
	}

	go func() {
		_ = g.Wait()
		close(s.ch)
	}()
}

func (s *DynamoDBSource) scanSegment(ctx context.Context, segment int) error {
	var startKey map[string]types.AttributeValue

	for {
		if s.limiter != nil {
			if err := s.limiter.Wait(ctx); err != nil {
				return err
			}
		}

		input := &dynamodb.ScanInput{
			TableName:         aws.String(s.table),
			ExclusiveStartKey: startKey,
		}
		if s.opts.PageLimit > 0 {
			input.Limit = aws.Int32(s.opts.PageLimit)
		}
		if s.opts.Segments > 1 {
			input.Segment = aws.Int32(int32(segment))
			input.TotalSegments = aws.Int32(int32(s.opts.Segments))
		}

		page, err := s.client.Scan(ctx, input)
		if err != nil {
			return fmt.Errorf("scan %s segment %d: %w", s.table, segment, err)
		}

		for _, item := range page.Items {
			u, err := s.itemToUser(item)
			if err != nil {
				return err
			}
			select {
			case <-ctx.Done():
				return ctx.Err()
			case s.ch <- u:
			}
		}

		if page.LastEvaluatedKey == nil {
			return nil
		}
		startKey = page.LastEvaluatedKey
	}
}

func (s *DynamoDBSource) itemToUser(item map[string]types.AttributeValue) (User, error) {
	lat, err := numericAttribute(item, s.opts.LatAttribute)
	if err != nil {
		return nil, err
	}
	lng, err := numericAttribute(item, s.opts.LngAttribute)
	if err != nil {
		return nil, err
	}
	return staticUser{ll: s2.LatLngFromDegrees(lat, lng)}, nil
}

func numericAttribute(item map[string]types.AttributeValue, name string) (float64, error) {
	av, ok := item[name]
	if !ok {
		return 0, fmt.Errorf("item missing attribute %q", name)
	}
	n, ok := av.(*types.AttributeValueMemberN)
	if !ok {
		return 0, fmt.Errorf("attribute %q is not numeric", name)
	}
	v, err := strconv.ParseFloat(n.Value, 64)
	if err != nil {
		return 0, fmt.Errorf("attribute %q: %w", name, err)
	}
	return v, nil
}
