package api

import (
	"github.com/osinthq/intake/app/database"
	"github.com/osinthq/intake/app/registry"
	"github.com/osinthq/intake/app/sources"
	"github.com/osinthq/intake/app/tasks"
)

type Handler struct {
	registry   *registry.Registry
	sourceRepo database.SourceRepository
	itemRepo   database.ItemRepository
	scheduler  tasks.TaskSchedulerInterface
	upstreams  []sources.Upstream
}
