package web

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"nztodo/internal/jsonvalue"
	"nztodo/internal/validate"
)

// maxBodySize caps request bodies; anything larger is reported as invalid json.
const maxBodySize = 1 << 20 // 1MB

// invalidJSON is the message for request bodies that do not parse.
const invalidJSON = "Invalid json"

type createListResponse struct {
	ID      string   `json:"id"`
	TaskIDs []string `json:"task_ids"`
}

type completeResponse struct {
	ID        string `json:"id"`
	Completed bool   `json:"completed"`
}

// quips answer requests that match no route, keyed by method.
var quips = map[string]string{
	http.MethodGet:     "It's quiet out there.  Too quiet.",
	http.MethodPost:    "You've got no horse and no cattle.  Just what do you think you are going to do with that post?",
	http.MethodPut:     "You think you're just going to put that there?",
	http.MethodDelete:  "You think you can kill a man?  I'ld like to see you try.",
	http.MethodOptions: "You don't know where you are going, and you want me to tell you how to get there?",
	http.MethodPatch:   "You keep working on that hole while the entire river is coming down at you.",
}

func (s *Server) handleListLists(c *gin.Context) {
	params, err := jsonvalue.FromQuery(c.Request.URL.RawQuery)
	if err != nil {
		s.fail(c, validate.NewBadRequest("Invalid query"))
		return
	}

	lists, err := s.store.ListLists(params)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, lists)
}

func (s *Server) handleCreateList(c *gin.Context) {
	data, ok := s.bind(c)
	if !ok {
		return
	}

	id, taskIDs, err := s.store.CreateList(data)
	if err != nil {
		s.fail(c, err)
		return
	}
	s.logger.Debug("list created", "id", id, "tasks", len(taskIDs))
	c.JSON(http.StatusCreated, createListResponse{ID: id, TaskIDs: taskIDs})
}

func (s *Server) handleGetList(c *gin.Context) {
	l, err := s.store.GetList(c.Param("list_id"))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, l)
}

func (s *Server) handleGetTask(c *gin.Context) {
	t, err := s.store.GetTask(c.Param("list_id"), c.Param("task_id"))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, t)
}

func (s *Server) handleCreateTask(c *gin.Context) {
	data, ok := s.bind(c)
	if !ok {
		return
	}

	id, err := s.store.CreateTask(c.Param("list_id"), data)
	if err != nil {
		s.fail(c, err)
		return
	}
	s.logger.Debug("task created", "list", c.Param("list_id"), "id", id)
	c.JSON(http.StatusCreated, id)
}

func (s *Server) handleCompleteTask(c *gin.Context) {
	data, ok := s.bind(c)
	if !ok {
		return
	}

	t, err := s.store.CompleteTask(c.Param("list_id"), c.Param("task_id"), data)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, completeResponse{ID: t.ID, Completed: t.Completed})
}

func (s *Server) handleNoRoute(c *gin.Context) {
	quip, ok := quips[c.Request.Method]
	if !ok {
		c.Header("Content-Type", "application/json; charset=utf-8")
		c.Status(http.StatusNotFound)
		c.Writer.WriteHeaderNow()
		return
	}
	c.JSON(http.StatusNotFound, quip)
}

// bind decodes the request body. On failure it writes the 400 response and
// returns false.
func (s *Server) bind(c *gin.Context) (any, bool) {
	body := http.MaxBytesReader(c.Writer, c.Request.Body, maxBodySize)
	data, err := jsonvalue.Decode(body)
	if err != nil {
		s.logger.Debug("invalid request body", "path", c.Request.URL.Path, "err", err)
		c.AbortWithStatusJSON(http.StatusBadRequest, invalidJSON)
		return nil, false
	}
	return data, true
}

// fail writes err as a JSON string with the status of its kind. Errors that
// are not request errors are logged and reported as 500.
func (s *Server) fail(c *gin.Context, err error) {
	status := validate.StatusOf(err)
	msg := err.Error()
	if validate.KindOf(err) == 0 {
		s.logger.Error("request failed", "path", c.Request.URL.Path, "err", err)
		msg = http.StatusText(status)
	}
	c.AbortWithStatusJSON(status, msg)
}
