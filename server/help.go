package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type endpointDoc struct {
	Endpoint string     `json:"endpoint"`
	Method   string     `json:"method"`
	Query    []fieldDoc `json:"query,omitempty"`
	Body     []fieldDoc `json:"body,omitempty"`
}

type fieldDoc struct {
	Name     string `json:"name"`
	Required bool   `json:"required"`
	Type     string `json:"type"`
	Comment  string `json:"comment,omitempty"`
}

var (
	pageFields = []fieldDoc{
		{Name: "page", Type: "integer", Comment: "starts at 1"},
		{Name: "size", Type: "integer"},
	}
	dueDateComment = "format should be yyyy-mm-dd"
)

var endpointDocs = map[string]endpointDoc{
	"See all tasks": {Endpoint: "/api/v1/tasks", Method: http.MethodGet, Query: pageFields},
	"See one task":  {Endpoint: "/api/v1/tasks/<task_id>", Method: http.MethodGet},
	"Create a task": {
		Endpoint: "/api/v1/tasks",
		Method:   http.MethodPost,
		Body: []fieldDoc{
			{Name: "title", Required: true, Type: "string"},
			{Name: "description", Type: "string"},
			{Name: "due_date", Required: true, Type: "string", Comment: dueDateComment},
		},
	},
	"Delete a task": {Endpoint: "/api/v1/tasks/<task_id>", Method: http.MethodDelete},
	"Edit a task": {
		Endpoint: "/api/v1/tasks/<task_id>",
		Method:   http.MethodPut + "|" + http.MethodPatch,
		Body: []fieldDoc{
			{Name: "title", Type: "string"},
			{Name: "description", Type: "string"},
			{Name: "due_date", Type: "string", Comment: dueDateComment},
		},
	},
	"Search for tasks": {
		Endpoint: "/api/v1/tasks/search/<query>",
		Method:   http.MethodGet,
		Query: append([]fieldDoc{
			{Name: "sort", Type: "string", Comment: "one of title, description, due_date, task_id"},
			{Name: "desc", Type: "boolean"},
		}, pageFields...),
	},
}

// help 首页，列出所有接口，尖括号不转义
func (api *ApplicationInterface) help(c *gin.Context) {
	c.PureJSON(http.StatusOK, gin.H{
		"message":               "This is the home page of tasks, a REST API for a task list.",
		"What can you do where": endpointDocs,
	})
}
