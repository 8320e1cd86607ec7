package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type jobTypeFixture struct {
	JobType string `json:"job_type" validate:"required,job_type"`
}

type contactChannelFixture struct {
	Channel string `json:"channel" validate:"required,contact_channel"`
}

type repeatIntervalFixture struct {
	Interval string `json:"interval" validate:"omitempty,repeat_interval_type"`
}

func TestValidate_JobType(t *testing.T) {
	v := New()

	assert.Nil(t, v.Validate(jobTypeFixture{JobType: "send_invoice"}))
	assert.Nil(t, v.Validate(jobTypeFixture{JobType: "send_reminder"}))

	errs := v.Validate(jobTypeFixture{JobType: "delete_everything"})
	assert.NotNil(t, errs)
	assert.Equal(t, "job_type", errs[0].Field)
}

func TestValidate_ContactChannel(t *testing.T) {
	v := New()

	assert.Nil(t, v.Validate(contactChannelFixture{Channel: "whatsapp"}))
	assert.Nil(t, v.Validate(contactChannelFixture{Channel: "email"}))
	assert.Nil(t, v.Validate(contactChannelFixture{Channel: "telegram"}))

	errs := v.Validate(contactChannelFixture{Channel: "carrier_pigeon"})
	assert.NotNil(t, errs)
}

func TestValidate_RepeatIntervalType(t *testing.T) {
	v := New()

	assert.Nil(t, v.Validate(repeatIntervalFixture{Interval: ""}))
	assert.Nil(t, v.Validate(repeatIntervalFixture{Interval: "MONTHLY"}))

	errs := v.Validate(repeatIntervalFixture{Interval: "FORTNIGHTLY"})
	assert.NotNil(t, errs)
}
