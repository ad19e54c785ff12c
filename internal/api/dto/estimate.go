package dto

import "time"

type EstimateRequest struct {
	StartLon float64    `json:"start_lon"`
	StartLat float64    `json:"start_lat"`
	EndLon   float64    `json:"end_lon"`
	EndLat   float64    `json:"end_lat"`
	Mode     string     `json:"mode"`
	ArriveBy *time.Time `json:"arrive_by"`
}

type EstimateResponse struct {
	Mode    string `json:"mode"`
	Minutes int    `json:"minutes"`
}
