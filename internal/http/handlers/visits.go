package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nagarik-sewa/backend/internal/models"
	"github.com/nagarik-sewa/backend/internal/service"
)

type StartTimerRequest struct {
	OfficeID  string `json:"office_id" binding:"required"`
	ServiceID string `json:"service_id" binding:"required"`
	UserID    string `json:"user_id"`
}

// @Summary Start visit timer
// @Description Starts the wait clock for a visit to an office
// @Tags visit
// @Accept json
// @Produce json
// @Success 200 {object} models.Visit
// @Failure 400 {object} map[string]any
// @Router /api/visit/start-timer [post]
func (h *Handler) StartTimer(c *gin.Context) {
	var req StartTimerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "VALIDATION_ERROR", "office_id and service_id are required", err.Error())
		return
	}
	visit, err := h.Visits.StartVisit(c.Request.Context(), req.OfficeID, req.ServiceID, req.UserID)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"visit_id":   visit.ID,
		"start_time": visit.StartTime,
		"state":      visit.State,
	})
}

type EndVisitRequest struct {
	VisitID       string `json:"visit_id" binding:"required"`
	ServiceStatus string `json:"service_status" binding:"required"`
}

// @Summary End visit
// @Description Stops the clock with a SUCCESS or FAILED outcome
// @Tags visit
// @Accept json
// @Produce json
// @Success 200 {object} map[string]any
// @Failure 404 {object} map[string]any
// @Failure 409 {object} map[string]any
// @Router /api/visit/end-visit [post]
func (h *Handler) EndVisit(c *gin.Context) {
	var req EndVisitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "VALIDATION_ERROR", "visit_id and service_status are required", err.Error())
		return
	}
	visit, err := h.Visits.EndVisit(c.Request.Context(), req.VisitID, models.ServiceStatus(req.ServiceStatus))
	if err != nil {
		h.writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"visit_id":              visit.ID,
		"service_status":        visit.ServiceStatus,
		"wait_duration_minutes": visit.WaitDurationMinutes,
		"message":               "Visit ended. Please provide rating and feedback.",
	})
}

type RatingRequest struct {
	VisitID                  string `json:"visit_id" binding:"required"`
	OverallRating            int    `json:"overall_rating" binding:"required"`
	StaffBehaviorRating      int    `json:"staff_behavior_rating" binding:"required"`
	CleanlinessRating        int    `json:"office_cleanliness_rating" binding:"required"`
	ProcessEfficiencyRating  int    `json:"process_efficiency_rating" binding:"required"`
	InformationClarityRating int    `json:"information_clarity_rating" binding:"required"`
	AskedForBribe            *bool  `json:"asked_for_bribe"`
	StaffHelpful             *bool  `json:"staff_helpful"`
	ProcessClear             *bool  `json:"process_clear"`
	DocumentsSufficient      *bool  `json:"documents_sufficient"`
	WouldRecommend           *bool  `json:"would_recommend"`
	WaitReason               string `json:"wait_reason"`
	Suggestions              string `json:"suggestions"`
	Complaints               string `json:"complaints"`
}

// @Summary Submit rating and feedback
// @Tags visit
// @Accept json
// @Produce json
// @Success 200 {object} map[string]any
// @Failure 400 {object} map[string]any
// @Failure 409 {object} map[string]any
// @Router /api/visit/rating [post]
func (h *Handler) SubmitRating(c *gin.Context) {
	var req RatingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "VALIDATION_ERROR", "malformed rating payload", err.Error())
		return
	}
	rating, err := h.Visits.SubmitRating(c.Request.Context(), req.VisitID, service.RatingInput{
		OverallRating:            req.OverallRating,
		StaffBehaviorRating:      req.StaffBehaviorRating,
		CleanlinessRating:        req.CleanlinessRating,
		ProcessEfficiencyRating:  req.ProcessEfficiencyRating,
		InformationClarityRating: req.InformationClarityRating,
		AskedForBribe:            req.AskedForBribe,
		StaffHelpful:             req.StaffHelpful,
		ProcessClear:             req.ProcessClear,
		DocumentsSufficient:      req.DocumentsSufficient,
		WouldRecommend:           req.WouldRecommend,
		WaitReason:               req.WaitReason,
		Suggestions:              req.Suggestions,
		Complaints:               req.Complaints,
	})
	if err != nil {
		h.writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"visit_id":        rating.VisitID,
		"overall_rating":  rating.OverallRating,
		"message":         "धन्यवाद! तपाईंको फिडब्याक सफलतापूर्वक पेश गरियो।",
		"message_english": "Thank you! Your feedback has been submitted successfully.",
	})
}

// @Summary Visit status
// @Description Current state and live wait time of a visit
// @Tags visit
// @Produce json
// @Success 200 {object} service.VisitStatus
// @Failure 404 {object} map[string]any
// @Router /api/visit/visit-status/{id} [get]
func (h *Handler) VisitStatus(c *gin.Context) {
	status, err := h.Visits.VisitStatus(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, status)
}

// @Summary Active visits
// @Description All RUNNING visits, for admin monitoring
// @Tags visit
// @Produce json
// @Success 200 {object} map[string]any
// @Router /api/visit/active-visits [get]
func (h *Handler) ActiveVisits(c *gin.Context) {
	visits, err := h.Visits.ActiveVisits(c.Request.Context())
	if err != nil {
		h.writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"active_visits": visits,
		"total_active":  len(visits),
	})
}

type feedbackQuestion struct {
	ID              string `json:"id"`
	QuestionNepali  string `json:"question_nepali"`
	QuestionEnglish string `json:"question_english"`
	Critical        bool   `json:"critical"`
}

var feedbackQuestions = []feedbackQuestion{
	{"asked_for_bribe", "के तपाईंलाई घुस माग्यो?", "Did they ask for a bribe?", true},
	{"staff_helpful", "कर्मचारी सहयोगी र विनम्र थिए?", "Were the staff helpful and polite?", false},
	{"process_clear", "प्रक्रिया स्पष्ट र बुझ्न सजिलो थियो?", "Was the process clear and easy to understand?", false},
	{"documents_sufficient", "तपाईंसँग भएका कागजात पुगे?", "Were your documents sufficient?", false},
	{"would_recommend", "के तपाईं यो कार्यालयलाई अरूलाई सिफारिस गर्नुहुन्छ?", "Would you recommend this office to others?", false},
}

// @Summary Feedback questions
// @Tags visit
// @Produce json
// @Router /api/visit/feedback-questions [get]
func (h *Handler) FeedbackQuestions(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"questions": feedbackQuestions})
}

type waitReasonOption struct {
	ID      string `json:"id"`
	Nepali  string `json:"nepali"`
	English string `json:"english"`
}

var waitReasonOptions = []waitReasonOption{
	{"lunch_break", "खाजा समय", "Lunch break"},
	{"system_down", "कम्प्युटर बिग्रियो", "Computer/system down"},
	{"staff_absent", "कर्मचारी अनुपस्थित", "Staff absent"},
	{"long_queue", "लामो लाइन", "Long queue"},
	{"document_issue", "कागजात समस्या", "Document issues"},
	{"payment_issue", "भुक्तानी समस्या", "Payment issues"},
	{"verification", "प्रमाणीकरण", "Verification process"},
	{"other", "अन्य", "Other"},
}

// @Summary Wait reason options
// @Tags visit
// @Produce json
// @Router /api/visit/wait-reasons [get]
func (h *Handler) WaitReasons(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"options": waitReasonOptions})
}
