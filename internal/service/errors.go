package service

import "errors"

var (
	// ErrAlreadyAssigned is returned when a rider tries to accept a
	// request that another rider already holds.
	ErrAlreadyAssigned = errors.New("request already assigned to another rider")

	// ErrInvalidTransition is returned when a lifecycle operation is
	// attempted from a state other than its required predecessor.
	ErrInvalidTransition = errors.New("invalid request status transition")

	// ErrAlreadyResponded is returned when a rider tries to accept a
	// request they have already declined or timed out on.
	ErrAlreadyResponded = errors.New("rider already responded to this request")

	// ErrInvalidPassengerID is returned when the passenger ID is empty.
	ErrInvalidPassengerID = errors.New("invalid passenger id")

	// ErrInvalidRiderID is returned when the rider ID is empty.
	ErrInvalidRiderID = errors.New("invalid rider id")

	// ErrInvalidRequestID is returned when the request ID is empty.
	ErrInvalidRequestID = errors.New("invalid request id")

	// ErrInvalidPickupLocation is returned when pickup coordinates are invalid.
	ErrInvalidPickupLocation = errors.New("invalid pickup location")

	// ErrInvalidDropoffLocation is returned when dropoff coordinates are invalid.
	ErrInvalidDropoffLocation = errors.New("invalid dropoff location")

	// ErrInvalidLocation is returned when location coordinates are invalid.
	ErrInvalidLocation = errors.New("invalid location")

	// ErrInvalidVehicleType is returned when the vehicle type is unknown.
	ErrInvalidVehicleType = errors.New("invalid vehicle type")

	// ErrInvalidFare is returned when a supplied fare is negative.
	ErrInvalidFare = errors.New("invalid fare")

	// ErrInvalidRadius is returned when a supplied search radius is
	// zero or negative.
	ErrInvalidRadius = errors.New("invalid search radius")

	// ErrInvalidPaymentAmount is returned when a payment amount is invalid.
	ErrInvalidPaymentAmount = errors.New("invalid payment amount")

	// ErrInvalidPaymentID is returned when the payment ID is empty.
	ErrInvalidPaymentID = errors.New("invalid payment id")

	// ErrRiderBusy is returned when a rider's accept lock is held by a
	// concurrent accept from the same rider.
	ErrRiderBusy = errors.New("rider has another accept in progress")

	// ErrRiderNotAssigned is returned when a rider acts on a request
	// assigned to someone else.
	ErrRiderNotAssigned = errors.New("rider not assigned to this request")
)
