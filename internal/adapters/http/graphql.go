package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/graphql-go/graphql"

	"github.com/samirrijal/geogrid/internal/core/domain"
	"github.com/samirrijal/geogrid/internal/core/usecases"
)

// buildSchema creates the GraphQL schema wired to our services.
// Object fields resolve through the json tags of the domain types.
func buildSchema(deps *Dependencies) (graphql.Schema, error) {
	lngLatType := graphql.NewObject(graphql.ObjectConfig{
		Name: "LngLat",
		Fields: graphql.Fields{
			"lng": &graphql.Field{Type: graphql.Float},
			"lat": &graphql.Field{Type: graphql.Float},
		},
	})

	boundsType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Bounds",
		Fields: graphql.Fields{
			"west":  &graphql.Field{Type: graphql.Float},
			"south": &graphql.Field{Type: graphql.Float},
			"east":  &graphql.Field{Type: graphql.Float},
			"north": &graphql.Field{Type: graphql.Float},
		},
	})

	cameraType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Camera",
		Fields: graphql.Fields{
			"center":  &graphql.Field{Type: lngLatType},
			"zoom":    &graphql.Field{Type: graphql.Float},
			"bearing": &graphql.Field{Type: graphql.Float},
		},
	})

	sizeType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Size",
		Fields: graphql.Fields{
			"width":  &graphql.Field{Type: graphql.Float},
			"height": &graphql.Field{Type: graphql.Float},
		},
	})

	gridLineType := graphql.NewObject(graphql.ObjectConfig{
		Name: "GridLine",
		Fields: graphql.Fields{
			"kind":  &graphql.Field{Type: graphql.String},
			"value": &graphql.Field{Type: graphql.Float},
			"from":  &graphql.Field{Type: lngLatType},
			"to":    &graphql.Field{Type: lngLatType},
			"label": &graphql.Field{
				Type: graphql.String,
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					l, _ := p.Source.(domain.GridLine)
					return deps.Grid.Format(l.Value), nil
				},
			},
		},
	})

	gridLinesType := graphql.NewObject(graphql.ObjectConfig{
		Name: "GridLines",
		Fields: graphql.Fields{
			"zoom_bucket":    &graphql.Field{Type: graphql.Int},
			"density":        &graphql.Field{Type: graphql.Float},
			"bounds":         &graphql.Field{Type: boundsType},
			"parallels":      &graphql.Field{Type: graphql.NewList(gridLineType)},
			"meridians":      &graphql.Field{Type: graphql.NewList(gridLineType)},
			"spacing_meters": &graphql.Field{Type: graphql.Float},
		},
	})

	labelType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Label",
		Fields: graphql.Fields{
			"value":  &graphql.Field{Type: graphql.Float},
			"anchor": &graphql.Field{Type: graphql.String},
			"x":      &graphql.Field{Type: graphql.Float},
			"y":      &graphql.Field{Type: graphql.Float},
			"text":   &graphql.Field{Type: graphql.String},
			"class": &graphql.Field{
				Type: graphql.String,
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					l, _ := p.Source.(domain.LabelDescriptor)
					return l.Class(), nil
				},
			},
		},
	})

	snapshotType := graphql.NewObject(graphql.ObjectConfig{
		Name: "GridSnapshot",
		Fields: graphql.Fields{
			"zoom":                 &graphql.Field{Type: graphql.Float},
			"zoom_bucket":          &graphql.Field{Type: graphql.Int},
			"density":              &graphql.Field{Type: graphql.Float},
			"bounds":               &graphql.Field{Type: boundsType},
			"projection":           &graphql.Field{Type: graphql.String},
			"bearing":              &graphql.Field{Type: graphql.Float},
			"labels_visible":       &graphql.Field{Type: graphql.Boolean},
			"labels":               &graphql.Field{Type: graphql.NewList(labelType)},
			"parallels":            &graphql.Field{Type: graphql.Int},
			"meridians":            &graphql.Field{Type: graphql.Int},
			"geometry_regenerated": &graphql.Field{Type: graphql.Boolean},
		},
	})

	sessionType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Session",
		Fields: graphql.Fields{
			"id":         &graphql.Field{Type: graphql.String},
			"camera":     &graphql.Field{Type: cameraType},
			"viewport":   &graphql.Field{Type: sizeType},
			"projection": &graphql.Field{Type: graphql.String},
			"attached":   &graphql.Field{Type: graphql.Boolean},
			"created_at": &graphql.Field{Type: graphql.DateTime},
		},
	})

	sessionViewType := graphql.NewObject(graphql.ObjectConfig{
		Name: "SessionView",
		Fields: graphql.Fields{
			"session": &graphql.Field{Type: sessionType},
			"grid":    &graphql.Field{Type: snapshotType},
		},
	})

	queryType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"grid": &graphql.Field{
				Type:        gridLinesType,
				Description: "Grid lines inside a bounding box",
				Args: graphql.FieldConfigArgument{
					"west":  &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Float)},
					"south": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Float)},
					"east":  &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Float)},
					"north": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Float)},
					"zoom":  &graphql.ArgumentConfig{Type: graphql.Float, DefaultValue: 0.0},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					bounds := domain.Bounds{
						West:  p.Args["west"].(float64),
						South: p.Args["south"].(float64),
						East:  p.Args["east"].(float64),
						North: p.Args["north"].(float64),
					}
					return deps.Grid.Lines(p.Context, bounds, p.Args["zoom"].(float64))
				},
			},
			"format": &graphql.Field{
				Type:        graphql.String,
				Description: "Render a coordinate value as label text",
				Args: graphql.FieldConfigArgument{
					"value": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Float)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return deps.Grid.Format(p.Args["value"].(float64)), nil
				},
			},
			"density": &graphql.Field{
				Type:        graphql.Float,
				Description: "Grid spacing in degrees at a zoom level",
				Args: graphql.FieldConfigArgument{
					"zoom": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Float)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return deps.Grid.Density(p.Args["zoom"].(float64)), nil
				},
			},
			"session": &graphql.Field{
				Type:        sessionViewType,
				Description: "Get a session and its latest grid state",
				Args: graphql.FieldConfigArgument{
					"id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return deps.Sessions.GetSession(p.Context, p.Args["id"].(string))
				},
			},
			"sessions": &graphql.Field{
				Type:        graphql.NewList(sessionType),
				Description: "List live sessions",
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return deps.Sessions.ListSessions(p.Context), nil
				},
			},
		},
	})

	mutationType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Mutation",
		Fields: graphql.Fields{
			"createSession": &graphql.Field{
				Type:        sessionViewType,
				Description: "Open a headless map session with a grid attached",
				Args: graphql.FieldConfigArgument{
					"lng":        &graphql.ArgumentConfig{Type: graphql.Float, DefaultValue: 0.0},
					"lat":        &graphql.ArgumentConfig{Type: graphql.Float, DefaultValue: 0.0},
					"zoom":       &graphql.ArgumentConfig{Type: graphql.Float, DefaultValue: 0.0},
					"bearing":    &graphql.ArgumentConfig{Type: graphql.Float, DefaultValue: 0.0},
					"width":      &graphql.ArgumentConfig{Type: graphql.Float, DefaultValue: 0.0},
					"height":     &graphql.ArgumentConfig{Type: graphql.Float, DefaultValue: 0.0},
					"projection": &graphql.ArgumentConfig{Type: graphql.String, DefaultValue: ""},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return deps.Sessions.CreateSession(p.Context, usecases.CreateSessionRequest{
						Camera: domain.Camera{
							Center:  domain.LngLat{Lng: p.Args["lng"].(float64), Lat: p.Args["lat"].(float64)},
							Zoom:    p.Args["zoom"].(float64),
							Bearing: p.Args["bearing"].(float64),
						},
						Viewport:   domain.Size{Width: p.Args["width"].(float64), Height: p.Args["height"].(float64)},
						Projection: domain.ProjectionMode(p.Args["projection"].(string)),
					})
				},
			},
			"moveCamera": &graphql.Field{
				Type:        sessionViewType,
				Description: "Jump a session's camera; omitted fields are kept",
				Args: graphql.FieldConfigArgument{
					"id":      &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
					"lng":     &graphql.ArgumentConfig{Type: graphql.Float},
					"lat":     &graphql.ArgumentConfig{Type: graphql.Float},
					"zoom":    &graphql.ArgumentConfig{Type: graphql.Float},
					"bearing": &graphql.ArgumentConfig{Type: graphql.Float},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					id := p.Args["id"].(string)
					var update domain.CameraUpdate
					lng, hasLng := p.Args["lng"].(float64)
					lat, hasLat := p.Args["lat"].(float64)
					if hasLng || hasLat {
						view, err := deps.Sessions.GetSession(p.Context, id)
						if err != nil {
							return nil, err
						}
						center := view.Session.Camera.Center
						if hasLng {
							center.Lng = lng
						}
						if hasLat {
							center.Lat = lat
						}
						update.Center = &center
					}
					if zoom, ok := p.Args["zoom"].(float64); ok {
						update.Zoom = &zoom
					}
					if bearing, ok := p.Args["bearing"].(float64); ok {
						update.Bearing = &bearing
					}
					return deps.Sessions.MoveCamera(p.Context, id, update)
				},
			},
			"setProjection": &graphql.Field{
				Type:        sessionViewType,
				Description: "Switch a session between mercator and globe",
				Args: graphql.FieldConfigArgument{
					"id":         &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
					"projection": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					mode := domain.ProjectionMode(p.Args["projection"].(string))
					return deps.Sessions.SetProjection(p.Context, p.Args["id"].(string), mode)
				},
			},
			"closeSession": &graphql.Field{
				Type:        graphql.Boolean,
				Description: "Destroy a session's map",
				Args: graphql.FieldConfigArgument{
					"id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					if err := deps.Sessions.CloseSession(p.Context, p.Args["id"].(string)); err != nil {
						return false, err
					}
					return true, nil
				},
			},
		},
	})

	return graphql.NewSchema(graphql.SchemaConfig{
		Query:    queryType,
		Mutation: mutationType,
	})
}

// GraphQLHandler serves the GraphQL endpoint.
func GraphQLHandler(deps *Dependencies) fiber.Handler {
	schema, err := buildSchema(deps)
	if err != nil {
		// This would be a programming error in the schema definition
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
