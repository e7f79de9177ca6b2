package http

import (
	"math"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/samirrijal/geogrid/internal/core/domain"
	"github.com/samirrijal/geogrid/internal/core/usecases"
	"github.com/samirrijal/geogrid/internal/pkg/metrics"
	"github.com/samirrijal/geogrid/internal/pkg/telemetry"
)

const maxRadiusMeters = 2_000_000

// GridHandler returns the grid lines for a bounding box or for a radius around a point.
//
//	GET /v1/grid?west=&south=&east=&north=&zoom=
//	GET /v1/grid?lat=&lng=&radius=&zoom=
//
// format=geojson returns a FeatureCollection with one LineString per line.
func GridHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		zoom := c.QueryFloat("zoom", 0)
		if zoom < 0 || zoom > 24 {
			return errBadRequest(c, "zoom must be between 0 and 24")
		}

		ctx, span := telemetry.Start(c.UserContext(), telemetry.SpanGridLines,
			attribute.Float64("grid.zoom", zoom))
		defer span.End()

		var (
			lines *usecases.GridLines
			err   error
		)
		if c.Query("radius") != "" {
			radius := c.QueryFloat("radius", 0)
			if radius <= 0 || radius > maxRadiusMeters {
				return errBadRequest(c, "radius must be between 1 and 2000000 meters")
			}
			center := domain.LngLat{
				Lng: c.QueryFloat("lng", math.NaN()),
				Lat: c.QueryFloat("lat", math.NaN()),
			}
			if math.IsNaN(center.Lng) || math.IsNaN(center.Lat) {
				return errBadRequest(c, "lat and lng are required with radius")
			}
			lines, err = deps.Grid.LinesAround(ctx, center, radius, zoom)
		} else {
			bounds := domain.Bounds{
				West:  c.QueryFloat("west", math.NaN()),
				South: c.QueryFloat("south", math.NaN()),
				East:  c.QueryFloat("east", math.NaN()),
				North: c.QueryFloat("north", math.NaN()),
			}
			lines, err = deps.Grid.Lines(ctx, bounds, zoom)
		}
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return errFromService(c, err)
		}
		span.SetAttributes(
			attribute.Int("grid.parallels", len(lines.Parallels)),
			attribute.Int("grid.meridians", len(lines.Meridians)),
		)

		if strings.EqualFold(c.Query("format"), "geojson") {
			return sendGeoJSON(c, linesCollection(lines, deps.Grid.Format))
		}
		return c.JSON(lines)
	}
}

// FormatHandler renders a coordinate value the way grid labels show it.
func FormatHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if c.Query("value") == "" {
			return errBadRequest(c, "value query parameter is required")
		}
		value := c.QueryFloat("value", math.NaN())
		if math.IsNaN(value) || math.IsInf(value, 0) {
			return errBadRequest(c, "value must be a finite number")
		}
		return c.JSON(fiber.Map{
			"value": value,
			"text":  deps.Grid.Format(value),
		})
	}
}

// DensityHandler returns the grid spacing used at a zoom level.
func DensityHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		zoom := c.QueryFloat("zoom", math.NaN())
		if math.IsNaN(zoom) || zoom < 0 || zoom > 24 {
			return errBadRequest(c, "zoom must be between 0 and 24")
		}
		return c.JSON(fiber.Map{
			"zoom":        zoom,
			"zoom_bucket": usecases.ZoomBucket(zoom),
			"density":     deps.Grid.Density(zoom),
		})
	}
}

// CreateSessionHandler opens a headless map session with a grid attached.
func CreateSessionHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req usecases.CreateSessionRequest
		if err := c.BodyParser(&req); err != nil {
			return errBadRequest(c, "invalid JSON body")
		}

		ctx, span := telemetry.Start(c.UserContext(), telemetry.SpanCreateSession,
			attribute.String("session.projection", string(req.Projection)))
		defer span.End()

		view, err := deps.Sessions.CreateSession(ctx, req)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return errFromService(c, err)
		}
		span.SetAttributes(attribute.String("session.id", view.Session.ID))
		metrics.UpdateSessionMetrics(deps.Sessions.Count())

		c.Location("/v1/sessions/" + view.Session.ID)
		return c.Status(fiber.StatusCreated).JSON(view)
	}
}

// ListSessionsHandler returns live sessions, oldest first.
func ListSessionsHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sessions := deps.Sessions.ListSessions(c.UserContext())

		offset, limit := pageParams(c, 50, 200)
		page, pg := paginate(sessions, offset, limit)
		SetLinkHeaders(c, pg)
		return c.JSON(PaginatedResponse{Data: page, Pagination: pg})
	}
}

// GetSessionHandler returns a session and the grid state of its last cycle.
func GetSessionHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		view, err := deps.Sessions.GetSession(c.UserContext(), c.Params("id"))
		if err != nil {
			return errFromService(c, err)
		}
		return c.JSON(view)
	}
}

// CloseSessionHandler destroys a session's map.
func CloseSessionHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := deps.Sessions.CloseSession(c.UserContext(), c.Params("id")); err != nil {
			return errFromService(c, err)
		}
		metrics.UpdateSessionMetrics(deps.Sessions.Count())
		return c.SendStatus(fiber.StatusNoContent)
	}
}

// MoveCameraHandler applies a partial camera update to a session.
func MoveCameraHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var update domain.CameraUpdate
		if err := c.BodyParser(&update); err != nil {
			return errBadRequest(c, "invalid JSON body")
		}
		if update.Center == nil && update.Zoom == nil && update.Bearing == nil {
			return errBadRequest(c, "at least one of center, zoom or bearing is required")
		}

		id := c.Params("id")
		ctx, span := telemetry.Start(c.UserContext(), telemetry.SpanMoveCamera,
			attribute.String("session.id", id))
		defer span.End()

		view, err := deps.Sessions.MoveCamera(ctx, id, update)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return errFromService(c, err)
		}
		return c.JSON(view)
	}
}

// ProjectionRequest is the body of a projection change.
type ProjectionRequest struct {
	Projection domain.ProjectionMode `json:"projection"`
}

// SetProjectionHandler switches a session between mercator and globe.
func SetProjectionHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req ProjectionRequest
		if err := c.BodyParser(&req); err != nil {
			return errBadRequest(c, "invalid JSON body")
		}

		id := c.Params("id")
		ctx, span := telemetry.Start(c.UserContext(), telemetry.SpanSetProjection,
			attribute.String("session.id", id),
			attribute.String("session.projection", string(req.Projection)))
		defer span.End()

		view, err := deps.Sessions.SetProjection(ctx, id, req.Projection)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return errFromService(c, err)
		}
		return c.JSON(view)
	}
}

// AttachGridHandler puts the grid back on a session's map.
func AttachGridHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		view, err := deps.Sessions.AttachGrid(c.UserContext(), c.Params("id"))
		if err != nil {
			return errFromService(c, err)
		}
		return c.JSON(view)
	}
}

// DetachGridHandler takes the grid off a session's map.
func DetachGridHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		view, err := deps.Sessions.DetachGrid(c.UserContext(), c.Params("id"))
		if err != nil {
			return errFromService(c, err)
		}
		return c.JSON(view)
	}
}

// Label is a placed label together with the CSS classes a web client renders it with.
type Label struct {
	domain.LabelDescriptor
	Class string `json:"class"`
}

// LabelsResponse lists the labels of a session's label container.
type LabelsResponse struct {
	Visible bool    `json:"visible"`
	Labels  []Label `json:"labels"`
}

// SessionLabelsHandler returns the labels currently rendered on a session's map.
func SessionLabelsHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		labels, visible, err := deps.Sessions.Labels(c.UserContext(), c.Params("id"))
		if err != nil {
			return errFromService(c, err)
		}
		resp := LabelsResponse{Visible: visible, Labels: make([]Label, 0, len(labels))}
		for _, l := range labels {
			resp.Labels = append(resp.Labels, Label{LabelDescriptor: l, Class: l.Class()})
		}
		return c.JSON(resp)
	}
}

// SessionSourceHandler returns the geometry of one grid source as a GeoJSON feature.
func SessionSourceHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		name := c.Params("name")
		data, err := deps.Sessions.SourceData(c.UserContext(), c.Params("id"), name)
		if err != nil {
			return errFromService(c, err)
		}
		f := geojson.NewFeature(data)
		f.Properties["source"] = name
		return sendGeoJSON(c, f)
	}
}

// linesCollection converts grid lines into a FeatureCollection, one LineString per line.
func linesCollection(lines *usecases.GridLines, format usecases.FormatFunc) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	add := func(l domain.GridLine) {
		f := geojson.NewFeature(orb.LineString{
			{l.From.Lng, l.From.Lat},
			{l.To.Lng, l.To.Lat},
		})
		f.Properties["kind"] = string(l.Kind)
		f.Properties["value"] = l.Value
		f.Properties["label"] = format(l.Value)
		fc.Append(f)
	}
	for _, l := range lines.Parallels {
		add(l)
	}
	for _, l := range lines.Meridians {
		add(l)
	}
	return fc
}

type geoJSONMarshaler interface {
	MarshalJSON() ([]byte, error)
}

func sendGeoJSON(c *fiber.Ctx, v geoJSONMarshaler) error {
	data, err := v.MarshalJSON()
	if err != nil {
		return errInternal(c, err.Error())
	}
	c.Set(fiber.HeaderContentType, "application/geo+json")
	return c.Send(data)
}
