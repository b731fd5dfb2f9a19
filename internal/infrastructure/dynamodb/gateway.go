// Package dynamodb implements catalog.Gateway on a single DynamoDB table.
//
// Key layout:
//
//	PRODUCT#<id>  METADATA                  product
//	USER#<id>     ORDER#<created>#<id>      order
//	USER#<id>     OUTFIT#<created>#<id>     saved outfit
//	PROFILE#<id>  METADATA                  leaderboard profile
package dynamodb

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/aws/smithy-go"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"stylesync-backend/internal/domain/catalog"
	apperrors "stylesync-backend/internal/errors"
)

// API is the subset of the DynamoDB client the gateway calls.
type API interface {
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	DeleteItem(ctx context.Context, params *dynamodb.DeleteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error)
	Query(ctx context.Context, params *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
	Scan(ctx context.Context, params *dynamodb.ScanInput, optFns ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error)
}

// Gateway stores the catalog, orders, outfits, and profiles in one table.
type Gateway struct {
	client    API
	tableName string
	logger    *zap.Logger
	now       func() time.Time
	newID     func() string
}

// NewGateway returns a gateway over tableName.
func NewGateway(client API, tableName string, logger *zap.Logger) *Gateway {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Gateway{
		client:    client,
		tableName: tableName,
		logger:    logger,
		now:       time.Now,
		newID:     func() string { return uuid.New().String() },
	}
}

// classify maps SDK failures onto the unified error types.
func classify(op, resource string, err error) error {
	var ae smithy.APIError
	if errors.As(err, &ae) {
		switch ae.ErrorCode() {
		case "ValidationException":
			return apperrors.Validation(apperrors.CodeInvalidInput, "request rejected by store").
				WithOperation(op).
				WithResource(resource).
				WithCause(err).
				WithDetails(ae.ErrorMessage()).
				Build()
		case "ProvisionedThroughputExceededException", "RequestLimitExceeded", "ThrottlingException":
			return apperrors.Transport(apperrors.CodeDynamoDBError, op, err).
				WithResource(resource).
				WithDetails("throughput exceeded").
				Build()
		}
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return apperrors.Timeout("store call timed out").
			WithOperation(op).
			WithCause(err).
			Build()
	}
	return apperrors.Transport(apperrors.CodeDynamoDBError, op, err).
		WithResource(resource).
		Build()
}

// scan pages through every item of one entity type that matches cond.
func (g *Gateway) scan(ctx context.Context, op, entity string, cond *expression.ConditionBuilder) ([]map[string]types.AttributeValue, error) {
	filter := expression.Name("EntityType").Equal(expression.Value(entity))
	if cond != nil {
		filter = filter.And(*cond)
	}
	expr, err := expression.NewBuilder().WithFilter(filter).Build()
	if err != nil {
		return nil, apperrors.Internal(apperrors.CodeInternalError, "failed to build expression").
			WithOperation(op).
			WithCause(err).
			Build()
	}

	var items []map[string]types.AttributeValue
	input := &dynamodb.ScanInput{
		TableName:                 aws.String(g.tableName),
		FilterExpression:          expr.Filter(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
	}
	for {
		out, err := g.client.Scan(ctx, input)
		if err != nil {
			return nil, classify(op, entity, err)
		}
		items = append(items, out.Items...)
		if len(out.LastEvaluatedKey) == 0 {
			return items, nil
		}
		input.ExclusiveStartKey = out.LastEvaluatedKey
	}
}

// queryUser reads one entity type from a user's partition, newest first.
func (g *Gateway) queryUser(ctx context.Context, op, userID, prefix string, limit int) ([]map[string]types.AttributeValue, error) {
	keyEx := expression.Key("PK").Equal(expression.Value(userPK(userID))).
		And(expression.Key("SK").BeginsWith(prefix))
	expr, err := expression.NewBuilder().WithKeyCondition(keyEx).Build()
	if err != nil {
		return nil, apperrors.Internal(apperrors.CodeInternalError, "failed to build expression").
			WithOperation(op).
			WithCause(err).
			Build()
	}

	input := &dynamodb.QueryInput{
		TableName:                 aws.String(g.tableName),
		KeyConditionExpression:    expr.KeyCondition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
		ScanIndexForward:          aws.Bool(false),
	}
	if limit > 0 {
		input.Limit = aws.Int32(int32(limit))
	}

	var items []map[string]types.AttributeValue
	for {
		out, err := g.client.Query(ctx, input)
		if err != nil {
			return nil, classify(op, userID, err)
		}
		items = append(items, out.Items...)
		if len(out.LastEvaluatedKey) == 0 || (limit > 0 && len(items) >= limit) {
			break
		}
		input.ExclusiveStartKey = out.LastEvaluatedKey
	}
	if limit > 0 && len(items) > limit {
		items = items[:limit]
	}
	return items, nil
}

func (g *Gateway) ListProducts(ctx context.Context, filter catalog.ProductFilter) ([]catalog.Product, error) {
	var cond *expression.ConditionBuilder
	if len(filter.Categories) > 0 {
		ops := make([]expression.OperandBuilder, len(filter.Categories))
		for i, c := range filter.Categories {
			ops[i] = expression.Value(string(c))
		}
		c := expression.Name("Category").In(ops[0], ops[1:]...)
		cond = &c
	}

	raw, err := g.scan(ctx, "ListProducts", entityProduct, cond)
	if err != nil {
		return nil, err
	}

	records := make([]catalog.ProductRecord, 0, len(raw))
	for _, av := range raw {
		var it productItem
		if err := attributevalue.UnmarshalMap(av, &it); err != nil {
			g.logger.Warn("Skipping unreadable product item", zap.Error(err))
			continue
		}
		records = append(records, it.ProductRecord)
	}
	products, rejected := catalog.ProductsFromRecords(records)
	for _, rerr := range rejected {
		g.logger.Warn("Dropping invalid product item", zap.Error(rerr))
	}
	// Scans come back in hash order; ID, order, and limit are applied here.
	return filter.Apply(products), nil
}

// putProduct writes p if cond holds. A failed condition is reported as
// onConflict.
func (g *Gateway) putProduct(ctx context.Context, op string, p catalog.Product, cond expression.ConditionBuilder, onConflict *apperrors.ErrorBuilder) (catalog.Product, error) {
	av, err := attributevalue.MarshalMap(newProductItem(p))
	if err != nil {
		return catalog.Product{}, apperrors.Internal(apperrors.CodeInternalError, "failed to marshal product").
			WithOperation(op).
			WithCause(err).
			Build()
	}
	expr, err := expression.NewBuilder().WithCondition(cond).Build()
	if err != nil {
		return catalog.Product{}, apperrors.Internal(apperrors.CodeInternalError, "failed to build expression").
			WithOperation(op).
			WithCause(err).
			Build()
	}
	_, err = g.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:                 aws.String(g.tableName),
		Item:                      av,
		ConditionExpression:       expr.Condition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
	})
	var ccf *types.ConditionalCheckFailedException
	if errors.As(err, &ccf) {
		return catalog.Product{}, onConflict.WithOperation(op).WithResource(p.ID).WithCause(err).Build()
	}
	if err != nil {
		return catalog.Product{}, classify(op, p.ID, err)
	}
	return p, nil
}

// CreateProduct assigns an ID and creation time when the caller left them empty.
func (g *Gateway) CreateProduct(ctx context.Context, p catalog.Product) (catalog.Product, error) {
	if p.ID == "" {
		p.ID = g.newID()
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = g.now().UTC()
	}
	return g.putProduct(ctx, "CreateProduct", p, expression.AttributeNotExists(expression.Name("PK")),
		apperrors.Validation(apperrors.CodeProductInvalid, "product already exists"))
}

// UpdateProduct replaces an existing product, keeping its creation time.
func (g *Gateway) UpdateProduct(ctx context.Context, p catalog.Product) (catalog.Product, error) {
	if p.CreatedAt.IsZero() {
		existing, err := g.getProduct(ctx, p.ID)
		if err != nil {
			return catalog.Product{}, err
		}
		p.CreatedAt = existing.CreatedAt
	}
	return g.putProduct(ctx, "UpdateProduct", p, expression.AttributeExists(expression.Name("PK")),
		apperrors.NotFound(apperrors.CodeProductNotFound, "product not found"))
}

func (g *Gateway) getProduct(ctx context.Context, id string) (catalog.Product, error) {
	out, err := g.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(g.tableName),
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: productPK(id)},
			"SK": &types.AttributeValueMemberS{Value: metadataSK},
		},
	})
	if err != nil {
		return catalog.Product{}, classify("GetProduct", id, err)
	}
	if len(out.Item) == 0 {
		return catalog.Product{}, apperrors.NotFound(apperrors.CodeProductNotFound, "product not found").
			WithOperation("GetProduct").
			WithResource(id).
			Build()
	}
	var it productItem
	if err := attributevalue.UnmarshalMap(out.Item, &it); err != nil {
		return catalog.Product{}, apperrors.Transport(apperrors.CodeDynamoDBError, "GetProduct", err).Build()
	}
	return it.ToProduct()
}

func (g *Gateway) DeleteProduct(ctx context.Context, id string) error {
	_, err := g.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(g.tableName),
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: productPK(id)},
			"SK": &types.AttributeValueMemberS{Value: metadataSK},
		},
	})
	if err != nil {
		return classify("DeleteProduct", id, err)
	}
	return nil
}

func (g *Gateway) put(ctx context.Context, op, resource string, v interface{}) error {
	av, err := attributevalue.MarshalMap(v)
	if err != nil {
		return apperrors.Internal(apperrors.CodeInternalError, "failed to marshal item").
			WithOperation(op).
			WithCause(err).
			Build()
	}
	if _, err := g.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(g.tableName),
		Item:      av,
	}); err != nil {
		return classify(op, resource, err)
	}
	return nil
}

func (g *Gateway) CreateOrder(ctx context.Context, o catalog.NewOrder) (string, error) {
	if err := o.Validate(); err != nil {
		return "", err
	}
	id := g.newID()
	if err := g.put(ctx, "CreateOrder", o.UserID, newOrderItem(id, o, g.now())); err != nil {
		return "", err
	}
	return id, nil
}

// ListOrders queries the user's partition, or scans every order when no user
// is given.
func (g *Gateway) ListOrders(ctx context.Context, f catalog.OrderFilter) ([]catalog.Order, error) {
	var (
		raw []map[string]types.AttributeValue
		err error
	)
	if f.UserID != "" {
		raw, err = g.queryUser(ctx, "ListOrders", f.UserID, "ORDER#", f.Limit)
	} else {
		raw, err = g.scan(ctx, "ListOrders", entityOrder, nil)
	}
	if err != nil {
		return nil, err
	}

	orders := make([]catalog.Order, 0, len(raw))
	for _, av := range raw {
		var it orderItem
		if err := attributevalue.UnmarshalMap(av, &it); err != nil {
			g.logger.Warn("Skipping unreadable order item", zap.Error(err))
			continue
		}
		o, err := it.record().ToOrder()
		if err != nil {
			g.logger.Warn("Dropping invalid order item", zap.String("sk", it.SK), zap.Error(err))
			continue
		}
		orders = append(orders, o)
	}
	sort.SliceStable(orders, func(i, j int) bool {
		return orders[i].CreatedAt.After(orders[j].CreatedAt)
	})
	if f.Limit > 0 && len(orders) > f.Limit {
		orders = orders[:f.Limit]
	}
	return orders, nil
}

func (g *Gateway) SaveOutfit(ctx context.Context, o catalog.NewSavedOutfit) (string, error) {
	if err := o.Validate(); err != nil {
		return "", err
	}
	id := g.newID()
	if err := g.put(ctx, "SaveOutfit", o.UserID, newOutfitItem(id, o, g.now())); err != nil {
		return "", err
	}
	return id, nil
}

// DeleteOutfit finds the outfit by ID and removes it. Deleting an unknown ID
// succeeds.
func (g *Gateway) DeleteOutfit(ctx context.Context, id string) error {
	cond := expression.Name("ID").Equal(expression.Value(id))
	raw, err := g.scan(ctx, "DeleteOutfit", entityOutfit, &cond)
	if err != nil {
		return err
	}
	for _, av := range raw {
		var keys Keys
		if err := attributevalue.UnmarshalMap(av, &keys); err != nil {
			return apperrors.Transport(apperrors.CodeDynamoDBError, "DeleteOutfit", err).Build()
		}
		_, err := g.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
			TableName: aws.String(g.tableName),
			Key: map[string]types.AttributeValue{
				"PK": &types.AttributeValueMemberS{Value: keys.PK},
				"SK": &types.AttributeValueMemberS{Value: keys.SK},
			},
		})
		if err != nil {
			return classify("DeleteOutfit", id, err)
		}
	}
	return nil
}

func (g *Gateway) ListUserOutfits(ctx context.Context, userID string) ([]catalog.SavedOutfit, error) {
	raw, err := g.queryUser(ctx, "ListUserOutfits", userID, "OUTFIT#", 0)
	if err != nil {
		return nil, err
	}
	outfits := make([]catalog.SavedOutfit, 0, len(raw))
	for _, av := range raw {
		var it outfitItem
		if err := attributevalue.UnmarshalMap(av, &it); err != nil {
			g.logger.Warn("Skipping unreadable outfit item", zap.Error(err))
			continue
		}
		if it.ID == "" {
			it.ID = idFromSK(it.SK)
		}
		o, err := it.record().ToSavedOutfit()
		if err != nil {
			g.logger.Warn("Dropping invalid outfit item", zap.String("sk", it.SK), zap.Error(err))
			continue
		}
		outfits = append(outfits, o)
	}
	return outfits, nil
}

// PutProfile writes a leaderboard profile.
func (g *Gateway) PutProfile(ctx context.Context, p catalog.Profile) error {
	if err := catalog.Validator().Struct(p); err != nil {
		return apperrors.Validation(apperrors.CodeValidationFailed, "invalid profile").
			WithCause(err).
			Build()
	}
	return g.put(ctx, "PutProfile", p.ID, newProfileItem(p))
}

func (g *Gateway) TopProfiles(ctx context.Context, limit int) ([]catalog.Profile, error) {
	raw, err := g.scan(ctx, "TopProfiles", entityProfile, nil)
	if err != nil {
		return nil, err
	}
	profiles := make([]catalog.Profile, 0, len(raw))
	for _, av := range raw {
		var it profileItem
		if err := attributevalue.UnmarshalMap(av, &it); err != nil {
			g.logger.Warn("Skipping unreadable profile item", zap.Error(err))
			continue
		}
		p := it.profile()
		if err := catalog.Validator().Struct(p); err != nil {
			g.logger.Warn("Dropping invalid profile item", zap.String("pk", it.PK), zap.Error(err))
			continue
		}
		profiles = append(profiles, p)
	}
	sort.SliceStable(profiles, func(i, j int) bool {
		return profiles[i].StyleScore > profiles[j].StyleScore
	})
	if limit > 0 && len(profiles) > limit {
		profiles = profiles[:limit]
	}
	return profiles, nil
}

var _ catalog.Gateway = (*Gateway)(nil)
