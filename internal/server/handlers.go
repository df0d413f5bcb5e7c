package server

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/limaJavier/courseplan/internal/logger"
	"github.com/limaJavier/courseplan/pkg/catalog"
	"github.com/limaJavier/courseplan/pkg/planner"
	"github.com/limaJavier/courseplan/pkg/store"
	"github.com/samber/lo"
)

// PlanRequest mirrors the student preference payload: x, y and z are the major, minor and elective counts
type PlanRequest struct {
	X                  int              `json:"x"`
	Y                  int              `json:"y"`
	Z                  int              `json:"z"`
	MinCredits         int              `json:"min_credits"`
	MaxCredits         int              `json:"max_credits"`
	BlacklistedPeriods map[string][]int `json:"blacklisted_periods"`
	Completed          []string         `json:"completed"`
	StudentID          string           `json:"student_id"` // Loads completed courses and blacklist from the store; the request's blacklist is added on top
}

// ScheduledCourse is one meeting of a scheduled course
type ScheduledCourse struct {
	CourseID   string `json:"course_id"`
	CourseName string `json:"course_name"`
	Credits    int    `json:"credits"`
	CourseType string `json:"course_type"`
	SectionID  string `json:"section_id"`
	Day        string `json:"day"`
	Period     int    `json:"period"`
}

type PlanResponse struct {
	Status           string            `json:"status"`
	Outcome          string            `json:"outcome"`
	RequestID        string            `json:"request_id"`
	CatalogVersion   uint64            `json:"catalog_version"`
	ScheduledCourses []ScheduledCourse `json:"scheduled_courses"`
	TotalCredits     int               `json:"total_credits"`
	ErrorMessage     string            `json:"error_message,omitempty"`
	Culprits         []string          `json:"culprits,omitempty"`
}

func (server *Server) health(ctx *gin.Context) {
	response := gin.H{"status": "ok"}
	if snapshot, err := server.catalogs.Current(); err == nil {
		response["catalog_version"] = snapshot.Version
	}
	ctx.JSON(http.StatusOK, response)
}

func (server *Server) listCatalog(ctx *gin.Context) {
	snapshot, err := server.catalogs.Current()
	if err != nil {
		ctx.JSON(http.StatusServiceUnavailable, gin.H{"status": "error", "error_message": err.Error()})
		return
	}

	courses := lo.Map(snapshot.Catalog.Courses(), func(course catalog.Course, _ int) gin.H {
		return gin.H{
			"course_id":   course.Code,
			"course_name": course.Name,
			"credits":     course.Credits,
			"course_type": course.Category.String(),
			"prereqs":     course.Prereqs.String(),
			"sections":    len(course.Sections),
		}
	})
	ctx.JSON(http.StatusOK, gin.H{"catalog_version": snapshot.Version, "courses": courses})
}

func (server *Server) plan(ctx *gin.Context) {
	response := PlanResponse{
		Status:           "error",
		RequestID:        ctx.GetString(requestIDKey),
		ScheduledCourses: []ScheduledCourse{},
	}

	var request PlanRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		response.Outcome = planner.Malformed.String()
		response.ErrorMessage = "Invalid request: " + err.Error()
		ctx.JSON(http.StatusBadRequest, response)
		return
	}

	//** Resolve inputs
	snapshot, err := server.catalogs.Current()
	if err != nil {
		response.Outcome = planner.Failed.String()
		response.ErrorMessage = err.Error()
		ctx.JSON(http.StatusServiceUnavailable, response)
		return
	}
	response.CatalogVersion = snapshot.Version

	student, status, err := server.student(ctx, request)
	if err != nil {
		response.Outcome = planner.OutcomeOf(err).String()
		response.ErrorMessage = err.Error()
		ctx.JSON(status, response)
		return
	}

	targets := catalog.Targets{
		MajorCount:    request.X,
		MinorCount:    request.Y,
		ElectiveCount: request.Z,
		MinCredits:    request.MinCredits,
		MaxCredits:    request.MaxCredits,
	}

	//** Plan
	start := time.Now()
	schedule, err := planner.Plan(ctx.Request.Context(), snapshot.Catalog, student, targets, server.options)
	outcome := planner.OutcomeOf(err)
	response.Outcome = outcome.String()

	logger.Info().
		Str(requestIDKey, response.RequestID).
		Uint64("catalog_version", snapshot.Version).
		Str("outcome", response.Outcome).
		Dur("duration", time.Since(start)).
		Msg("plan")

	switch outcome {
	case planner.Scheduled:
		response.Status = "success"
		response.TotalCredits = schedule.TotalCredits
		response.ScheduledCourses = meetings(*schedule)
		ctx.JSON(http.StatusOK, response)
	case planner.EligibilityEmpty:
		response.ErrorMessage = "No eligible courses found based on prerequisites/blacklist."
		ctx.JSON(http.StatusOK, response)
	case planner.Infeasible:
		response.ErrorMessage = "No feasible schedule found. Try loosening constraints."
		var infeasible *planner.InfeasibleError
		if errors.As(err, &infeasible) {
			response.Culprits = infeasible.Culprits
		}
		ctx.JSON(http.StatusOK, response)
	case planner.Undetermined:
		response.ErrorMessage = "The search ran out of time before finding a schedule. Try again or narrow the request."
		ctx.JSON(http.StatusOK, response)
	case planner.Malformed:
		response.ErrorMessage = err.Error()
		ctx.JSON(http.StatusBadRequest, response)
	default:
		logger.Error().Err(err).Str(requestIDKey, response.RequestID).Msg("plan failed")
		response.ErrorMessage = "Internal error"
		ctx.JSON(http.StatusInternalServerError, response)
	}
}

// Builds the student state from the store (when a student id is given) and the request's own fields
func (server *Server) student(ctx *gin.Context, request PlanRequest) (catalog.StudentState, int, error) {
	completed := make([]catalog.CourseCode, 0, len(request.Completed))
	blacklist := make([]catalog.Slot, 0)

	if request.StudentID != "" {
		if server.students == nil {
			return catalog.StudentState{}, http.StatusBadRequest, errors.New("student lookup is not enabled")
		}
		stored, err := server.students.LoadStudent(ctx.Request.Context(), request.StudentID)
		if errors.Is(err, store.ErrStudentNotFound) {
			return catalog.StudentState{}, http.StatusNotFound, err
		} else if err != nil {
			return catalog.StudentState{}, http.StatusInternalServerError, err
		}
		completed = append(completed, stored.CompletedCodes()...)
		blacklist = append(blacklist, stored.BlacklistedSlots()...)
	}

	extra, err := catalog.ProcessRawStudent(catalog.RawStudent{Completed: request.Completed, Blacklist: request.BlacklistedPeriods})
	if err != nil {
		return catalog.StudentState{}, http.StatusBadRequest, err
	}
	completed = append(completed, extra.CompletedCodes()...)
	blacklist = append(blacklist, extra.BlacklistedSlots()...)

	return catalog.NewStudentState(completed, blacklist), http.StatusOK, nil
}

// One row per scheduled meeting, the way registrar grids list them
func meetings(schedule planner.Schedule) []ScheduledCourse {
	rows := make([]ScheduledCourse, 0)
	for _, course := range schedule.Courses {
		for _, slot := range course.Slots {
			rows = append(rows, ScheduledCourse{
				CourseID:   string(course.Code),
				CourseName: course.Name,
				Credits:    course.Credits,
				CourseType: course.Category.String(),
				SectionID:  course.SectionID,
				Day:        slot.Day.Letter(),
				Period:     slot.Period,
			})
		}
	}
	return rows
}
