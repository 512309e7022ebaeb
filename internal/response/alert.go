package response

import (
	"fmt"
	"net/url"

	"github.com/gin-gonic/gin"

	"github.com/smb564/21-points/internal/config"
)

// Alerts writes the notification headers the web client turns into toasts.
type Alerts struct {
	Namespace string
}

// Created sets the alert for a newly created entity.
func (a Alerts) Created(c *gin.Context, entity string, id int64) {
	a.alert(c, fmt.Sprintf("A new %s is created with identifier %d", entity, id), id)
}

// Updated sets the alert for an updated entity.
func (a Alerts) Updated(c *gin.Context, entity string, id int64) {
	a.alert(c, fmt.Sprintf("A %s is updated with identifier %d", entity, id), id)
}

// Deleted sets the alert for a deleted entity.
func (a Alerts) Deleted(c *gin.Context, entity string, id int64) {
	a.alert(c, fmt.Sprintf("A %s is deleted with identifier %d", entity, id), id)
}

// Failure sets the error alert headers.
func (a Alerts) Failure(c *gin.Context, entity, errorKey string) {
	c.Header(config.Key.ErrorHeader(a.Namespace), "error."+errorKey)
	c.Header(config.Key.ParamsHeader(a.Namespace), entity)
}

func (a Alerts) alert(c *gin.Context, message string, id int64) {
	c.Header(config.Key.AlertHeader(a.Namespace), message)
	c.Header(config.Key.ParamsHeader(a.Namespace), url.QueryEscape(fmt.Sprint(id)))
}
