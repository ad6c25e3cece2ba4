package server

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/xid"
	"github.com/rs/zerolog/log"
	"github.com/turnon/tasks/tasklist/common"
	"github.com/turnon/tasks/util"
)

const mod = "api"

const requestIDHeader = "X-Request-Id"

type ApplicationInterface struct {
	port     int
	pageSize int
	ch       chan struct{}
	ctx      context.Context
	tasks    common.Tasklist
}

func newApi(ctx context.Context, port, pageSize int, tasks common.Tasklist) *ApplicationInterface {
	api := &ApplicationInterface{ctx: ctx, port: port, pageSize: pageSize, tasks: tasks}
	api.start()
	return api
}

// wait 等待api退出
func (api *ApplicationInterface) wait() chan struct{} {
	return api.ch
}

// logErr 输出日志
func (api *ApplicationInterface) logErr(err error) {
	log.Error().Str("mod", mod).Err(err).Send()
}

func (api *ApplicationInterface) start() {
	api.ch = make(chan struct{})
	if api.port == 0 {
		api.port = defaultPort
	}

	httpSrv := &http.Server{
		Addr:    ":" + strconv.Itoa(api.port),
		Handler: api.router(),
	}

	go func() {
		log.Info().Str("mod", mod).Int("port", api.port).Msg("listening")
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			api.logErr(err)
		}
	}()

	go func() {
		<-api.ctx.Done()
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		err := httpSrv.Shutdown(ctx)
		if err == nil {
			log.Info().Str("mod", mod).Msg("shutdown")
		} else {
			api.logErr(err)
		}
		close(api.ch)
	}()
}

// router 注册路由
func (api *ApplicationInterface) router() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	useJSONFieldNames()

	router := gin.New()
	router.Use(requestLogger())
	router.Use(gin.Recovery())

	router.GET("/", api.help)

	v1 := router.Group("api").Group("/v1")
	{
		v1.GET("/tasks", api.listTasks)
		v1.POST("/tasks", api.postTasks)
		v1.GET("/tasks/search/:query", api.searchTasks)
		v1.GET("/tasks/:id", api.getTasks)
		v1.PUT("/tasks/:id", api.updateTasks)
		v1.PATCH("/tasks/:id", api.updateTasks)
		v1.DELETE("/tasks/:id", api.deleteTasks)
	}

	return router
}

// listTasks 分页列出全部任务
func (api *ApplicationInterface) listTasks(c *gin.Context) {
	params, err := util.ParsePageParams(c.Query("page"), c.Query("size"), api.pageSize)
	if err != nil {
		api.abortWithErr(c, err)
		return
	}

	all, err := api.tasks.All(c.Request.Context())
	if err != nil {
		api.abortWithErr(c, err)
		return
	}
	c.JSON(http.StatusOK, util.Paginate(all, params.Page, params.Size))
}

// postTasks 新建任务
func (api *ApplicationInterface) postTasks(c *gin.Context) {
	var nt common.NewTask
	if err := c.ShouldBindJSON(&nt); err != nil {
		api.abortWithErr(c, bindingErr(err))
		return
	}

	id, err := api.tasks.Create(c.Request.Context(), nt)
	if err != nil {
		api.abortWithErr(c, err)
		return
	}

	created := nt.Task()
	created.ID = id
	c.JSON(http.StatusCreated, created)
}

// getTasks 查看任务
func (api *ApplicationInterface) getTasks(c *gin.Context) {
	id, ok := api.taskID(c)
	if !ok {
		return
	}

	t, err := api.tasks.Get(c.Request.Context(), id)
	if err != nil {
		api.abortWithErr(c, err)
		return
	}
	c.JSON(http.StatusOK, t)
}

// updateTasks 修改任务，只改请求中出现的字段，不存在的id先于请求体报错
func (api *ApplicationInterface) updateTasks(c *gin.Context) {
	id, ok := api.taskID(c)
	if !ok {
		return
	}
	if _, err := api.tasks.Get(c.Request.Context(), id); err != nil {
		api.abortWithErr(c, err)
		return
	}

	u, err := common.DecodeTaskUpdate(c.Request.Body)
	if err != nil {
		api.abortWithErr(c, bindingErr(err))
		return
	}

	t, err := api.tasks.Update(c.Request.Context(), id, u)
	if err != nil {
		api.abortWithErr(c, err)
		return
	}
	c.JSON(http.StatusOK, t)
}

// deleteTasks 删除任务
func (api *ApplicationInterface) deleteTasks(c *gin.Context) {
	id, ok := api.taskID(c)
	if !ok {
		return
	}

	existed, err := api.tasks.Delete(c.Request.Context(), id)
	if err != nil {
		api.abortWithErr(c, err)
		return
	}
	if !existed {
		api.abortWithErr(c, common.NotFound(id))
		return
	}
	c.Status(http.StatusNoContent)
}

// searchTasks 搜索任务，可排序、分页
func (api *ApplicationInterface) searchTasks(c *gin.Context) {
	params, err := util.ParsePageParams(c.Query("page"), c.Query("size"), api.pageSize)
	if err != nil {
		api.abortWithErr(c, err)
		return
	}

	q := common.SearchQuery{Query: c.Param("query"), SortBy: common.SortField(c.Query("sort"))}
	if desc := c.Query("desc"); desc != "" {
		q.SortDesc, err = strconv.ParseBool(desc)
		if err != nil {
			api.abortWithErr(c, &common.ValidationError{Field: "desc", Reason: "must be a boolean"})
			return
		}
	}

	ctx := c.Request.Context()
	cur, err := api.tasks.Search(ctx, q)
	if err != nil {
		api.abortWithErr(c, err)
		return
	}
	defer cur.Close()

	page, err := util.PaginateStream(func() (common.Task, error) { return cur.Next(ctx) }, params.Page, params.Size)
	if err != nil {
		api.abortWithErr(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

// taskID 解析路径中的id，非整数视为不存在
func (api *ApplicationInterface) taskID(c *gin.Context) (int64, bool) {
	raw := c.Param("id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "Task with ID not found: " + raw})
		return 0, false
	}
	return id, true
}

// abortWithErr 把存储层的错误转成响应
func (api *ApplicationInterface) abortWithErr(c *gin.Context, err error) {
	var (
		ve *common.ValidationError
		se *common.InvalidSortError
	)
	switch {
	case errors.Is(err, common.ErrNotFound):
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.As(err, &se):
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": se.Error(), "field": "sort"})
	case errors.As(err, &ve):
		c.AbortWithStatusJSON(http.StatusUnprocessableEntity, gin.H{"error": ve.Error(), "field": ve.Field})
	case errors.Is(err, errBadRequest):
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		api.logErr(err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

func requestLogger() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		startTime := time.Now()

		requestID := ctx.GetHeader(requestIDHeader)
		if requestID == "" {
			requestID = xid.New().String()
		}
		ctx.Header(requestIDHeader, requestID)

		ctx.Next()
		log.
			Info().
			Str("mod", mod).
			Str("request_id", requestID).
			Int("code", ctx.Writer.Status()).
			Str("method", ctx.Request.Method).
			Str("path", ctx.Request.RequestURI).
			TimeDiff("latency", time.Now(), startTime).
			Send()
	}
}
