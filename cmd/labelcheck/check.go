package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/joseph-ayodele/label-verifier/constants"
	"github.com/joseph-ayodele/label-verifier/internal/app"
	"github.com/joseph-ayodele/label-verifier/internal/common"
	"github.com/joseph-ayodele/label-verifier/internal/entity"
	"github.com/joseph-ayodele/label-verifier/internal/report"
	"github.com/joseph-ayodele/label-verifier/internal/server"
)

type checkOptions struct {
	beverageType string
	formPath     string
	brand        string
	classType    string
	abv          string
	netContents  string
	nameAddress  string
	remote       string
	xlsxPath     string
	jsonOut      bool
	verbose      bool
}

func newCheckCmd(g *globalOptions) *cobra.Command {
	o := &checkOptions{}
	cmd := &cobra.Command{
		Use:   "check IMAGE [IMAGE...]",
		Short: "Validate label images against form values",
		Example: `  labelcheck check --type spirits --form form.json front.png back.jpg
  labelcheck check --type wine --brand "Vino" --class "Red Wine" --net "750 mL" \
      --address "Vino Cellars, Napa CA" label.jpg`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(cmd, g, o, args)
		},
	}
	f := cmd.Flags()
	f.StringVarP(&o.beverageType, "type", "t", "", "beverage type: "+strings.Join(constants.BeverageTypeStrings(), ", "))
	f.StringVarP(&o.formPath, "form", "f", "", "JSON file with form values (overrides the value flags)")
	f.StringVar(&o.brand, "brand", "", "brand name")
	f.StringVar(&o.classType, "class", "", "class/type designation")
	f.StringVar(&o.abv, "abv", "", "alcohol content in percent")
	f.StringVar(&o.netContents, "net", "", "net contents, e.g. 750 mL")
	f.StringVar(&o.nameAddress, "address", "", "bottler name and address")
	f.StringVar(&o.remote, "remote", "", "validate on a labelverifierd gRPC server at this address")
	f.StringVar(&o.xlsxPath, "xlsx", "", "also write the report as an XLSX workbook")
	f.BoolVar(&o.jsonOut, "json", false, "print the report as JSON")
	f.BoolVarP(&o.verbose, "verbose", "v", false, "show OCR evidence and per-image excerpts")
	_ = cmd.MarkFlagRequired("type")
	return cmd
}

func runCheck(cmd *cobra.Command, g *globalOptions, o *checkOptions, paths []string) error {
	form, err := o.form()
	if err != nil {
		return err
	}
	images, err := readImageFiles(paths)
	if err != nil {
		return err
	}
	var total int
	for _, img := range images {
		total += len(img.Data)
	}
	g.logger.Debug("images loaded", "count", len(images), "size", humanize.Bytes(uint64(total)))

	var rep entity.Report
	if o.remote != "" {
		rep, err = checkRemote(cmd, o, form, images)
	} else {
		bt, _ := constants.ParseBeverageType(o.beverageType)
		var a *app.App
		if a, err = app.New(g.cfg, g.logger); err != nil {
			return err
		}
		rep, err = a.Processor.Validate(cmd.Context(), bt, form, images)
	}
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if o.jsonOut {
		if err := writeJSON(out, rep); err != nil {
			return err
		}
	} else if err := report.WriteText(out, rep, g.textOptions(out, o.verbose)); err != nil {
		return err
	}

	if o.xlsxPath != "" {
		data, err := report.WriteXLSX(rep)
		if err != nil {
			return err
		}
		if err := os.WriteFile(o.xlsxPath, data, 0o644); err != nil {
			return common.WrapError(err, "write "+o.xlsxPath)
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "wrote %s (%s)\n", o.xlsxPath, humanize.Bytes(uint64(len(data))))
	}

	if rep.Status == constants.StatusNonCompliant {
		return errNonCompliant
	}
	return nil
}

func checkRemote(cmd *cobra.Command, o *checkOptions, form entity.FormData, images []entity.LabelImage) (entity.Report, error) {
	conn, err := grpc.NewClient(o.remote, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return entity.Report{}, fmt.Errorf("dial %s: %w", o.remote, err)
	}
	defer conn.Close()

	req, err := server.NewValidateRequest(o.beverageType, form, images)
	if err != nil {
		return entity.Report{}, err
	}
	resp, err := server.NewLabelServiceClient(conn).Validate(cmd.Context(), req,
		grpc.MaxCallSendMsgSize(64<<20))
	if err != nil {
		return entity.Report{}, err
	}
	return server.DecodeReport(resp)
}

// form reads --form or assembles the value flags into the same JSON shape, so
// both paths go through the schema.
func (o *checkOptions) form() (entity.FormData, error) {
	if o.formPath != "" {
		raw, err := os.ReadFile(o.formPath)
		if err != nil {
			return entity.FormData{}, fmt.Errorf("read form: %w", err)
		}
		return entity.ParseFormData(raw)
	}
	values := map[string]any{
		constants.FieldBrandName:   o.brand,
		constants.FieldClassType:   o.classType,
		constants.FieldNetContents: o.netContents,
		constants.FieldNameAddress: o.nameAddress,
	}
	if o.abv != "" {
		values[constants.FieldAlcoholContent] = o.abv
	}
	raw, err := json.Marshal(values)
	if err != nil {
		return entity.FormData{}, err
	}
	return entity.ParseFormData(raw)
}

func readImageFiles(paths []string) ([]entity.LabelImage, error) {
	images := make([]entity.LabelImage, 0, len(paths))
	for _, p := range paths {
		name := filepath.Base(p)
		if !constants.IsAllowedImageExt(filepath.Ext(name)) {
			return nil, common.InvalidInput("image %q: unsupported format (allowed: png, jpg, jpeg)", p)
		}
		data, err := os.ReadFile(p)
		if err != nil {
			return nil, fmt.Errorf("read image: %w", err)
		}
		if len(data) == 0 {
			return nil, common.InvalidInput("image %q is empty", p)
		}
		images = append(images, entity.LabelImage{ID: name, Data: data})
	}
	return images, nil
}

func writeJSON(w io.Writer, rep entity.Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(struct {
		entity.Report
		ElapsedMS int64    `json:"elapsed_ms"`
		Warnings  []string `json:"warnings,omitempty"`
	}{rep, rep.Elapsed.Milliseconds(), rep.Warnings()})
}
