package cmd

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/abhisek/dataready/internal/catalog"
)

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "List roles and skills",
}

var catalogRolesCmd = &cobra.Command{
	Use:   "roles",
	Short: "List target roles",
	Run: func(cmd *cobra.Command, args []string) {
		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tNAME\tEXPERIENCE\tDIFFICULTY\tSKILLS")
		for _, r := range catalog.AllRoles() {
			info := r.Info()
			fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\n",
				r, info.DisplayName, info.ExperienceRange, info.BaseDifficulty, len(catalog.SkillsForRole(r)))
		}
		w.Flush()
	},
}

var catalogSkillsCmd = &cobra.Command{
	Use:   "skills",
	Short: "List skills, optionally for one role",
	RunE: func(cmd *cobra.Command, args []string) error {
		skills := catalog.AllSkills()
		if v, _ := cmd.Flags().GetString("role"); v != "" {
			role, err := catalog.ParseRole(v)
			if err != nil {
				return err
			}
			skills = catalog.SkillsForRole(role)
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tNAME\tCATEGORY\tROLES")
		for _, s := range skills {
			roles := make([]string, 0, len(s.Roles))
			for _, r := range s.Roles {
				roles = append(roles, strings.TrimSuffix(string(r), "_data_engineer"))
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", s.ID, s.Name, s.Category, strings.Join(roles, ","))
		}
		return w.Flush()
	},
}

func init() {
	catalogSkillsCmd.Flags().String("role", "", "Only skills assessed for this role")

	catalogCmd.AddCommand(catalogRolesCmd)
	catalogCmd.AddCommand(catalogSkillsCmd)
}
