package dynamo

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// DoctorRepo reads the doctors table. Profiles are owned by the portal; only ids are needed here.
type DoctorRepo struct {
	client    API
	tableName string
}

func NewDoctorRepo(client API, tableName string) *DoctorRepo {
	return &DoctorRepo{client: client, tableName: tableName}
}

// ListIDs returns the id of every doctor.
func (r *DoctorRepo) ListIDs(ctx context.Context) ([]string, error) {
	p := dynamodb.NewScanPaginator(r.client, &dynamodb.ScanInput{
		TableName:                aws.String(r.tableName),
		ProjectionExpression:     aws.String("#id"),
		ExpressionAttributeNames: map[string]string{"#id": fieldDoctorID},
	})
	var ids []string
	for p.HasMorePages() {
		page, err := p.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("scan doctors: %w", err)
		}
		for _, item := range page.Items {
			if v, ok := item[fieldDoctorID].(*types.AttributeValueMemberS); ok {
				ids = append(ids, v.Value)
			}
		}
	}
	return ids, nil
}
