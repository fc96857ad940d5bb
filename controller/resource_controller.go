// api/controller/resource_controller.go
package controller

import (
	"context"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/m2m-works/scld/api/audit"
	"github.com/m2m-works/scld/api/model"
	"github.com/m2m-works/scld/api/service"
	"github.com/m2m-works/scld/api/util"
)

// OperationEvent is published on the event bus after every completed resource
// operation.
const OperationEvent = "resource.operation"

// ResourceController is the single HTTP surface of the resource tree. Every
// resource type goes through the same four routes; the engine works out the
// type from the target path and representation.
type ResourceController struct {
	lifecycle *service.Lifecycle
	eventBus  *util.EventBus
}

func NewResourceController(lifecycle *service.Lifecycle, eventBus *util.EventBus) *ResourceController {
	return &ResourceController{
		lifecycle: lifecycle,
		eventBus:  eventBus,
	}
}

// RegisterRoutes registers the API routes for the resource tree
func (rc *ResourceController) RegisterRoutes(r *gin.RouterGroup) {
	resources := r.Group("/resources")
	{
		resources.POST("/*path", rc.Post)
		resources.GET("/*path", rc.Retrieve)
		resources.PUT("/*path", rc.Update)
		resources.DELETE("/*path", rc.Delete)
	}
}

// Post endpoint: a representation creates a child under the targeted
// collection; an empty body invokes the target instead.
func (rc *ResourceController) Post(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		util.RespondWithError(c, http.StatusBadRequest, "Unreadable request body", err)
		return
	}
	verb := model.VerbCreate
	if len(body) == 0 {
		verb = model.VerbExecute
	}
	rc.handle(c, verb, body)
}

// Retrieve endpoint
func (rc *ResourceController) Retrieve(c *gin.Context) {
	rc.handle(c, model.VerbRetrieve, nil)
}

// Update endpoint
func (rc *ResourceController) Update(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		util.RespondWithError(c, http.StatusBadRequest, "Unreadable request body", err)
		return
	}
	rc.handle(c, model.VerbUpdate, body)
}

// Delete endpoint
func (rc *ResourceController) Delete(c *gin.Context) {
	rc.handle(c, model.VerbDelete, nil)
}

func (rc *ResourceController) handle(c *gin.Context, verb model.Verb, body []byte) {
	start := time.Now()
	req := model.Request{
		Verb:             verb,
		TargetPath:       strings.Trim(c.Param("path"), "/"),
		RequestingEntity: util.RequestingEntity(c),
		Representation:   body,
	}

	resp := rc.lifecycle.Handle(c.Request.Context(), req)

	if rc.eventBus != nil {
		rc.eventBus.Publish(context.Background(), OperationEvent, audit.OperationRecord{
			Timestamp:        start,
			RequestingEntity: req.RequestingEntity,
			Operation:        string(verb),
			TargetPath:       req.TargetPath,
			StatusCode:       resp.StatusCode,
			LatencyMillis:    time.Since(start).Milliseconds(),
		})
	}

	if len(resp.Body) == 0 {
		c.Status(resp.StatusCode)
		return
	}
	c.Data(resp.StatusCode, "application/json", resp.Body)
}
