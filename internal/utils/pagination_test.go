package utils

import (
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/valyala/fasthttp"
)

func paginationFor(t *testing.T, uri string) Pagination {
	t.Helper()

	app := fiber.New()
	ctx := app.AcquireCtx(&fasthttp.RequestCtx{})
	defer app.ReleaseCtx(ctx)
	ctx.Request().SetRequestURI(uri)

	return ParsePagination(ctx)
}

func TestParsePagination(t *testing.T) {
	pg := paginationFor(t, "/?page=3&limit=10")
	assert.Equal(t, 3, pg.Page)
	assert.Equal(t, 10, pg.Limit)
	assert.Equal(t, 20, pg.Offset)

	pg = paginationFor(t, "/")
	assert.Equal(t, 1, pg.Page)
	assert.Equal(t, defaultPageSize, pg.Limit)
	assert.Zero(t, pg.Offset)

	pg = paginationFor(t, "/?page=-2&limit=0")
	assert.Equal(t, 1, pg.Page)
	assert.Equal(t, defaultPageSize, pg.Limit)

	pg = paginationFor(t, "/?limit=5000")
	assert.Equal(t, maxPageSize, pg.Limit)
}
