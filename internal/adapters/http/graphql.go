package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/graphql-go/graphql"

	"github.com/wandering-tales/wandering-tales/internal/core/domain"
)

// buildSchema creates the read-only GraphQL schema over published travels.
func buildSchema(deps *Dependencies) (graphql.Schema, error) {
	locationType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Location",
		Fields: graphql.Fields{
			"lat":     &graphql.Field{Type: graphql.Float},
			"lng":     &graphql.Field{Type: graphql.Float},
			"address": &graphql.Field{Type: graphql.String},
			"city":    &graphql.Field{Type: graphql.String},
			"state":   &graphql.Field{Type: graphql.String},
			"country": &graphql.Field{Type: graphql.String},
		},
	})

	mediaType := graphql.NewObject(graphql.ObjectConfig{
		Name: "MediaItem",
		Fields: graphql.Fields{
			"id":            &graphql.Field{Type: graphql.String},
			"url":           &graphql.Field{Type: graphql.String},
			"thumbnail_url": &graphql.Field{Type: graphql.String},
			"caption":       &graphql.Field{Type: graphql.String},
			"type":          &graphql.Field{Type: graphql.String},
			"order_index":   &graphql.Field{Type: graphql.Int},
		},
	})

	travelFields := func() graphql.Fields {
		return graphql.Fields{
			"id":           &graphql.Field{Type: graphql.String},
			"title":        &graphql.Field{Type: graphql.String},
			"description":  &graphql.Field{Type: graphql.String},
			"location":     &graphql.Field{Type: locationType},
			"visit_date":   &graphql.Field{Type: graphql.String},
			"created_at":   &graphql.Field{Type: graphql.String},
			"tags":         &graphql.Field{Type: graphql.NewList(graphql.String)},
			"is_published": &graphql.Field{Type: graphql.Boolean},
		}
	}

	travelType := graphql.NewObject(graphql.ObjectConfig{
		Name:   "Travel",
		Fields: travelFields(),
	})

	detailFields := travelFields()
	detailFields["media"] = &graphql.Field{Type: graphql.NewList(mediaType)}
	detailType := graphql.NewObject(graphql.ObjectConfig{
		Name:   "TravelDetail",
		Fields: detailFields,
	})

	queryType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"travels": &graphql.Field{
				Type:        graphql.NewList(travelType),
				Description: "Published travels ordered by visit date",
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					travels, err := deps.Travels.ListPublished(p.Context)
					if err != nil {
						return nil, err
					}
					return travelMaps(travels), nil
				},
			},
			"travel": &graphql.Field{
				Type:        detailType,
				Description: "A travel with its media, or null",
				Args: graphql.FieldConfigArgument{
					"id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					detail, err := deps.Travels.GetByID(p.Context, p.Args["id"].(string))
					if errors.Is(err, domain.ErrNotFound) {
						return nil, nil
					}
					if err != nil {
						return nil, err
					}
					m := travelMap(detail.Travel)
					media := make([]map[string]interface{}, 0, len(detail.Media))
					for _, item := range detail.Media {
						media = append(media, map[string]interface{}{
							"id":            item.ID,
							"url":           item.URL,
							"thumbnail_url": item.ThumbnailURL,
							"caption":       item.Caption,
							"type":          string(item.Type),
							"order_index":   item.OrderIndex,
						})
					}
					m["media"] = media
					return m, nil
				},
			},
			"travelsByDateRange": &graphql.Field{
				Type:        graphql.NewList(travelType),
				Description: "Published travels visited between start and end (inclusive)",
				Args: graphql.FieldConfigArgument{
					"start": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
					"end":   &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					travels, err := deps.Travels.ListByDateRange(p.Context, p.Args["start"].(string), p.Args["end"].(string))
					if err != nil {
						return nil, err
					}
					return travelMaps(travels), nil
				},
			},
		},
	})

	return graphql.NewSchema(graphql.SchemaConfig{
		Query: queryType,
	})
}

func travelMap(t domain.Travel) map[string]interface{} {
	tags := t.Tags
	if tags == nil {
		tags = []string{}
	}
	return map[string]interface{}{
		"id":          t.ID,
		"title":       t.Title,
		"description": t.Description,
		"location": map[string]interface{}{
			"lat":     t.Location.Lat,
			"lng":     t.Location.Lng,
			"address": t.Location.Address,
			"city":    t.Location.City,
			"state":   t.Location.State,
			"country": t.Location.Country,
		},
		"visit_date":   t.VisitDate,
		"created_at":   t.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
		"tags":         tags,
		"is_published": t.IsPublished,
	}
}

func travelMaps(travels []domain.Travel) []map[string]interface{} {
	out := make([]map[string]interface{}, 0, len(travels))
	for _, t := range travels {
		out = append(out, travelMap(t))
	}
	return out
}

// GraphQLHandler serves the GraphQL endpoint.
func GraphQLHandler(deps *Dependencies) fiber.Handler {
	schema, err := buildSchema(deps)
	if err != nil {
		panic("graphql schema build: " + err.Error())
	}

	type gqlRequest struct {
		Query         string                 `json:"query"`
		OperationName string                 `json:"operationName"`
		Variables     map[string]interface{} `json:"variables"`
	}

	return func(c *fiber.Ctx) error {
		var req gqlRequest
		if err := c.BodyParser(&req); err != nil {
			return errBadRequest(c, "invalid request body")
		}

		result := graphql.Do(graphql.Params{
			Schema:         schema,
			RequestString:  req.Query,
			VariableValues: req.Variables,
			OperationName:  req.OperationName,
			Context:        c.UserContext(),
		})
		return c.JSON(result)
	}
}
