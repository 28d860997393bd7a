package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/MickeyElders/pi-control-program/internal/gpio"
	"github.com/MickeyElders/pi-control-program/internal/models"
)

const errInvalidBodyPref = "invalid body: "

// commandError distinguishes rejected commands (bad index, interlock
// trips) from genuine failures. Rejections return 400 with the reason.
func (h *Handler) commandError(c *gin.Context, err error, logKey string) {
	switch {
	case errors.Is(err, gpio.ErrInvalidRelay),
		errors.Is(err, gpio.ErrInvalidAutoSwitch),
		errors.Is(err, gpio.ErrInvalidLiftState),
		errors.Is(err, gpio.ErrLiftMovingUp),
		errors.Is(err, gpio.ErrLiftMovingDown):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		if h.log != nil {
			h.log.Errorw(logKey, "err", err)
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}

func (h *Handler) setRelay(c *gin.Context) {
	var cmd models.RelayCommand
	if err := c.ShouldBindJSON(&cmd); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": errInvalidBodyPref + err.Error()})
		return
	}
	resp, err := h.services.Rig.SetRelay(c.Request.Context(), cmd)
	if err != nil {
		h.commandError(c, err, "relay_set_failed")
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) setAuto(c *gin.Context) {
	var cmd models.AutoSwitchCommand
	if err := c.ShouldBindJSON(&cmd); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": errInvalidBodyPref + err.Error()})
		return
	}
	resp, err := h.services.Rig.SetAuto(c.Request.Context(), cmd)
	if err != nil {
		h.commandError(c, err, "auto_set_failed")
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) setLift(c *gin.Context) {
	var cmd models.LiftCommand
	if err := c.ShouldBindJSON(&cmd); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": errInvalidBodyPref + err.Error()})
		return
	}
	resp, err := h.services.Rig.SetLift(c.Request.Context(), cmd)
	if err != nil {
		h.commandError(c, err, "lift_set_failed")
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) setHeater(c *gin.Context) {
	var cmd models.HeaterCommand
	if err := c.ShouldBindJSON(&cmd); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": errInvalidBodyPref + err.Error()})
		return
	}
	resp, err := h.services.Rig.SetHeater(c.Request.Context(), cmd)
	if err != nil {
		h.commandError(c, err, "heater_set_failed")
		return
	}
	c.JSON(http.StatusOK, resp)
}
