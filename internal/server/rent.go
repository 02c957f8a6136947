package server

import (
	"net/http"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/lodgeops/lodgeops/internal/admincontext"
	rentdomain "github.com/lodgeops/lodgeops/internal/rent/domain"
)

func (s *Server) CreateRent(c *gin.Context) {
	var req rentdomain.CreateRentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	rent, err := s.rentSvc.Create(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": rent})
}

func (s *Server) ListRents(c *gin.Context) {
	var query rentdomain.ListRentRequest
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.rentSvc.List(c.Request.Context(), query)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp.Rents, "page_info": resp.PageInfo})
}

func (s *Server) ListDueRents(c *gin.Context) {
	due, err := s.rentSvc.ListDueRents(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": due})
}

func (s *Server) GetRent(c *gin.Context) {
	rent, err := s.rentSvc.GetByID(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": rent})
}

func (s *Server) PayRent(c *gin.Context) {
	var input rentdomain.PaymentInput
	if err := c.ShouldBindJSON(&input); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	result, err := s.rentSvc.ApplyPayment(c.Request.Context(), strings.TrimSpace(c.Param("id")), input)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": result})
}

func (s *Server) GenerateRents(c *gin.Context) {
	var req struct {
		Month int `json:"month"`
		Year  int `json:"year"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	var adminID snowflake.ID
	if id, ok := admincontext.AdminIDFromContext(c.Request.Context()); ok {
		adminID = id
	}

	result, err := s.rentSvc.GenerateForPeriod(c.Request.Context(), rentdomain.GenerateRequest{
		AdminID: adminID,
		Month:   req.Month,
		Year:    req.Year,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": result})
}
