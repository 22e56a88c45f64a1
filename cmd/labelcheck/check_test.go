package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/label-verifier/internal/common"
)

func TestCheckFormFromFlags(t *testing.T) {
	o := &checkOptions{brand: "Vino", classType: "Red Wine", abv: "13.5%", netContents: "750 mL", nameAddress: "Vino Cellars, Napa CA"}
	form, err := o.form()
	require.NoError(t, err)
	assert.Equal(t, "Vino", form.BrandName)
	require.NotNil(t, form.AlcoholContent)
	assert.Equal(t, 13.5, *form.AlcoholContent)

	o.abv = ""
	form, err = o.form()
	require.NoError(t, err)
	assert.Nil(t, form.AlcoholContent)

	o.brand = ""
	_, err = o.form()
	assert.ErrorIs(t, err, common.ErrInvalidInput)
}

func TestCheckFormFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "form.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"brand_name":"Old Crow","class_type_designation":"Bourbon","alcohol_content":40,"net_contents":"750ML","name_address":"Frankfort KY"}`), 0o644))

	form, err := (&checkOptions{formPath: path, brand: "ignored"}).form()
	require.NoError(t, err)
	assert.Equal(t, "Old Crow", form.BrandName)
	assert.Equal(t, 40.0, *form.AlcoholContent)
}

func TestReadImageFiles(t *testing.T) {
	dir := t.TempDir()
	png := filepath.Join(dir, "front.PNG")
	require.NoError(t, os.WriteFile(png, []byte("img"), 0o644))
	empty := filepath.Join(dir, "empty.jpg")
	require.NoError(t, os.WriteFile(empty, nil, 0o644))

	images, err := readImageFiles([]string{png})
	require.NoError(t, err)
	require.Len(t, images, 1)
	assert.Equal(t, "front.PNG", images[0].ID)

	_, err = readImageFiles([]string{empty})
	assert.ErrorIs(t, err, common.ErrInvalidInput)
	_, err = readImageFiles([]string{filepath.Join(dir, "label.tiff")})
	assert.ErrorIs(t, err, common.ErrInvalidInput)
}

func TestRulesCommand(t *testing.T) {
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"rules", "--no-color"})

	require.NoError(t, cmd.Execute())
	assert.Contains(t, out.String(), "GOV_WARNING_EXACT")
	assert.Contains(t, out.String(), "SPIRITS")
}

func TestExitCode(t *testing.T) {
	assert.Equal(t, 0, exitCode(nil))
	assert.Equal(t, 1, exitCode(errNonCompliant))
}
